// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"sort"

	"github.com/pdiddy/docgen/internal/placeholder"
)

// Description reports what a template needs from a caller.
type Description struct {
	Name        string            `json:"name" yaml:"name"`
	Title       string            `json:"title,omitempty" yaml:"title,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Source      string            `json:"source" yaml:"source"`
	Keys        []string          `json:"keys" yaml:"keys"`
	Missing     []string          `json:"missing" yaml:"missing"`
	Defaults    map[string]string `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Body        string            `json:"body,omitempty" yaml:"body,omitempty"`
}

// Describe loads a template and lists its placeholder keys. Missing holds
// the keys that neither the template defaults nor the engine itself
// supply, so a caller must provide them.
func (e *Engine) Describe(ctx context.Context, name string) (*Description, error) {
	tmpl, err := e.template(ctx, name)
	if err != nil {
		return nil, err
	}

	d := &Description{
		Name:        tmpl.Name,
		Title:       tmpl.Title,
		Description: tmpl.Description,
		Source:      tmpl.Source,
		Keys:        tmpl.Keys,
		Missing:     []string{},
		Defaults:    make(map[string]string, len(tmpl.Defaults)),
		Body:        tmpl.Body,
	}
	if d.Keys == nil {
		d.Keys = []string{}
	}
	for k, v := range tmpl.Defaults {
		d.Defaults[k] = placeholder.Stringify(v)
	}
	for _, k := range d.Keys {
		if _, ok := tmpl.Defaults[k]; ok || e.fillsKey(k) {
			continue
		}
		d.Missing = append(d.Missing, k)
	}
	sort.Strings(d.Missing)
	return d, nil
}

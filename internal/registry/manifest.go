// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"fmt"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docgen/internal/placeholder"
)

// ManifestFile is the manifest name looked up at a registry root.
const ManifestFile = "templates.yaml"

// Manifest lists the templates of a registry.
type Manifest struct {
	// Defaults apply to every template; entry defaults override them.
	Defaults  map[string]any   `yaml:"defaults"`
	Templates map[string]Entry `yaml:"templates"`
}

// Entry describes one template in a manifest.
type Entry struct {
	File        string         `yaml:"file"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Delimiter   string         `yaml:"delimiter"`
	Defaults    map[string]any `yaml:"defaults"`
}

// ParseManifest decodes and validates manifest YAML. Entries without a
// file default to the lower-cased name plus ".md".
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	for name, e := range m.Templates {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("manifest has a template with an empty name")
		}
		if e.File == "" {
			e.File = strings.ToLower(name) + ".md"
		}
		if err := checkDelimiter(e.Delimiter); err != nil {
			return nil, fmt.Errorf("template %s: %w", name, err)
		}
		m.Templates[name] = e
	}
	return &m, nil
}

// Names returns the template names, sorted.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Templates))
	for n := range m.Templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// resource builds the resource for name. source maps the entry file to
// its location.
func (m *Manifest) resource(name string, source func(file string) string) (Resource, error) {
	key, ok := lookup(name, m.Names())
	if !ok {
		return Resource{}, &UnknownTemplateError{Name: name, Known: m.Names()}
	}
	e := m.Templates[key]
	return Resource{
		Name:        key,
		File:        e.File,
		Title:       e.Title,
		Description: e.Description,
		Delimiter:   e.Delimiter,
		Defaults:    placeholder.Merge(m.Defaults, e.Defaults),
		Source:      source(e.File),
	}, nil
}

func checkDelimiter(d string) error {
	switch d {
	case "", DelimBrackets, DelimBraces:
		return nil
	}
	return fmt.Errorf("unknown delimiter %q (want %s or %s)", d, DelimBrackets, DelimBraces)
}

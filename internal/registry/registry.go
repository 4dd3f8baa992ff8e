// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry maps template names to template resources and loads
// them. Registries can be backed by a directory, an embedded file system
// or a remote HTTP location, and chained so user templates override the
// built-in ones.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/docgen/internal/placeholder"
)

// Delimiter styles a template may declare.
const (
	DelimBrackets = "brackets" // [[KEY]]
	DelimBraces   = "braces"   // {{KEY}}, normalized before resolving
)

// Sentinel errors matched by the typed errors below.
var (
	ErrUnknownTemplate  = errors.New("unknown template")
	ErrTemplateNotFound = errors.New("template not found")
)

// UnknownTemplateError reports a name that no registry knows.
type UnknownTemplateError struct {
	Name  string
	Known []string
}

func (e *UnknownTemplateError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown template %q", e.Name)
	}
	return fmt.Sprintf("unknown template %q (known: %s)", e.Name, strings.Join(e.Known, ", "))
}

func (e *UnknownTemplateError) Is(target error) bool { return target == ErrUnknownTemplate }

// TemplateNotFoundError reports a known name whose resource is missing.
type TemplateNotFoundError struct {
	Name   string
	Source string
	Err    error
}

func (e *TemplateNotFoundError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("template %q not found at %s", e.Name, e.Source)
	}
	return fmt.Sprintf("template %q not found at %s: %v", e.Name, e.Source, e.Err)
}

func (e *TemplateNotFoundError) Unwrap() error { return e.Err }

func (e *TemplateNotFoundError) Is(target error) bool { return target == ErrTemplateNotFound }

// Resource describes a template before its text is loaded.
type Resource struct {
	Name        string              `json:"name" yaml:"name"`
	File        string              `json:"file" yaml:"file"`
	Title       string              `json:"title,omitempty" yaml:"title,omitempty"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Delimiter   string              `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	Defaults    placeholder.Context `json:"defaults,omitempty" yaml:"defaults,omitempty"`

	// Source locates the resource for messages: a path, URL or builtin:file.
	Source string `json:"source" yaml:"source"`
}

// Registry resolves template names and opens their text.
type Registry interface {
	// Resolve maps a name to a resource. Unknown names return an error
	// matching ErrUnknownTemplate.
	Resolve(name string) (Resource, error)

	// Open returns the raw template text. A missing resource returns an
	// error matching ErrTemplateNotFound.
	Open(ctx context.Context, res Resource) ([]byte, error)

	// Names lists the known template names, sorted.
	Names() []string
}

// Chain queries registries in order; the first that knows a name wins.
type Chain []Registry

// Resolve implements Registry.
func (c Chain) Resolve(name string) (Resource, error) {
	for _, r := range c {
		res, err := r.Resolve(name)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, ErrUnknownTemplate) {
			return Resource{}, err
		}
	}
	return Resource{}, &UnknownTemplateError{Name: name, Known: c.Names()}
}

// Open implements Registry. The resource is opened by the registry that
// resolves its name to the same source.
func (c Chain) Open(ctx context.Context, res Resource) ([]byte, error) {
	for _, r := range c {
		own, err := r.Resolve(res.Name)
		if err != nil || own.Source != res.Source {
			continue
		}
		return r.Open(ctx, res)
	}
	return nil, &TemplateNotFoundError{Name: res.Name, Source: res.Source}
}

// Names implements Registry.
func (c Chain) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range c {
		for _, n := range r.Names() {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names
}

// lookup finds name in known, exactly or else by case-insensitive match
// when exactly one name matches.
func lookup(name string, known []string) (string, bool) {
	var folded []string
	for _, k := range known {
		if k == name {
			return k, true
		}
		if strings.EqualFold(k, name) {
			folded = append(folded, k)
		}
	}
	if len(folded) == 1 {
		return folded[0], true
	}
	return "", false
}

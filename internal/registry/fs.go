// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed builtin
var builtinFS embed.FS

// FSRegistry serves templates from a file system. With a templates.yaml
// at the root the manifest defines the templates; without one every
// top-level .md or .docx file is a template named by its upper-cased base
// name. A .md file wins over a .docx of the same name.
type FSRegistry struct {
	fsys     fs.FS
	manifest *Manifest
	source   func(file string) string
}

// NewFS loads the registry at the root of fsys. source maps a template
// file to the location reported in Resource.Source.
func NewFS(fsys fs.FS, source func(file string) string) (*FSRegistry, error) {
	r := &FSRegistry{fsys: fsys, source: source}

	data, err := fs.ReadFile(fsys, ManifestFile)
	switch {
	case err == nil:
		m, err := ParseManifest(data)
		if err != nil {
			return nil, err
		}
		r.manifest = m
	case errors.Is(err, fs.ErrNotExist):
		m, err := scanTemplates(fsys)
		if err != nil {
			return nil, err
		}
		r.manifest = m
	default:
		return nil, fmt.Errorf("reading %s: %w", ManifestFile, err)
	}
	return r, nil
}

// NewDir loads the registry rooted at a templates directory.
func NewDir(dir string) (*FSRegistry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("templates directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates directory %s is not a directory", dir)
	}
	return NewFS(os.DirFS(dir), func(file string) string {
		return filepath.Join(dir, filepath.FromSlash(file))
	})
}

// Builtin returns the registry of the embedded protocol templates.
func Builtin() *FSRegistry {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		panic(fmt.Sprintf("builtin templates: %v", err))
	}
	r, err := NewFS(sub, func(file string) string { return "builtin:" + file })
	if err != nil {
		panic(fmt.Sprintf("builtin templates: %v", err))
	}
	return r
}

// Resolve implements Registry.
func (r *FSRegistry) Resolve(name string) (Resource, error) {
	return r.manifest.resource(name, r.source)
}

// Open implements Registry.
func (r *FSRegistry) Open(_ context.Context, res Resource) ([]byte, error) {
	data, err := fs.ReadFile(r.fsys, res.File)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &TemplateNotFoundError{Name: res.Name, Source: res.Source, Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", res.Source, err)
	}
	return data, nil
}

// Names implements Registry.
func (r *FSRegistry) Names() []string { return r.manifest.Names() }

// scanTemplates builds a manifest from the top-level template files of fsys.
func scanTemplates(fsys fs.FS) (*Manifest, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	m := &Manifest{Templates: make(map[string]Entry)}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := path.Ext(e.Name())
		name := strings.ToUpper(strings.TrimSuffix(e.Name(), ext))
		switch {
		case ext == ".md":
			m.Templates[name] = Entry{File: e.Name()}
		case isWordFile(e.Name()):
			if _, ok := m.Templates[name]; !ok {
				m.Templates[name] = Entry{File: e.Name()}
			}
		}
	}
	return m, nil
}

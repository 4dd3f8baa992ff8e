// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package contextfile loads placeholder values from the places a caller
// keeps them: YAML or JSON files, a directory holding one file per key,
// and KEY=VALUE assignments from the command line.
package contextfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docgen/internal/placeholder"
)

// Sources lists where to read context values from. Later sources override
// earlier ones: Dir, then each of Files in order, then Set.
type Sources struct {
	Files []string
	Dir   string
	Set   []string

	// UpperKeys upper-cases every key before merging.
	UpperKeys bool
}

// Load reads and merges all sources. Unreadable files in Dir are reported
// on warn and skipped.
func (s Sources) Load(warn io.Writer) (placeholder.Context, error) {
	var layers []placeholder.Context

	if s.Dir != "" {
		ctx, err := LoadDir(s.Dir, warn)
		if err != nil {
			return nil, err
		}
		layers = append(layers, ctx)
	}
	for _, f := range s.Files {
		ctx, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		layers = append(layers, ctx)
	}
	if len(s.Set) > 0 {
		ctx, err := ParseAssignments(s.Set)
		if err != nil {
			return nil, err
		}
		layers = append(layers, ctx)
	}

	if s.UpperKeys {
		for i, l := range layers {
			layers[i] = UpperKeys(l)
		}
	}
	return placeholder.Merge(layers...), nil
}

// LoadFile reads a context mapping from a .json, .yaml or .yml file. The
// top level must be a mapping.
func LoadFile(path string) (placeholder.Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading context file: %w", err)
	}
	ctx, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("context file %s: %w", path, err)
	}
	return ctx, nil
}

// Decode parses a context mapping. ext selects the format: ".json" for
// JSON, anything else for YAML (which also accepts JSON).
func Decode(data []byte, ext string) (placeholder.Context, error) {
	ctx := placeholder.Context{}
	if len(bytes.TrimSpace(data)) == 0 {
		return ctx, nil
	}

	if strings.EqualFold(ext, ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&ctx); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		return ctx, nil
	}

	if err := yaml.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return ctx, nil
}

// LoadDir reads every regular, non-hidden file in dir as one value: the
// file name without extension is the key and the trimmed contents the
// value. A missing directory yields an empty context. Empty files are
// skipped.
func LoadDir(dir string, warn io.Writer) (placeholder.Context, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return placeholder.Context{}, nil
		}
		return nil, fmt.Errorf("reading context directory %s: %w", dir, err)
	}

	ctx := make(placeholder.Context)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read context value %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			ctx[strings.TrimSuffix(name, filepath.Ext(name))] = value
		}
	}
	return ctx, nil
}

// ParseAssignments parses KEY=VALUE pairs. The value may be empty and may
// itself contain '='.
func ParseAssignments(pairs []string) (placeholder.Context, error) {
	ctx := make(placeholder.Context, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q: want KEY=VALUE", p)
		}
		ctx[key] = value
	}
	return ctx, nil
}

// UpperKeys returns ctx with upper-cased keys. When two keys fold to the
// same name, the one already upper-case wins.
func UpperKeys(ctx placeholder.Context) placeholder.Context {
	out := make(placeholder.Context, len(ctx))
	for k, v := range ctx {
		up := strings.ToUpper(k)
		if _, taken := out[up]; taken && k != up {
			continue
		}
		out[up] = v
	}
	return out
}

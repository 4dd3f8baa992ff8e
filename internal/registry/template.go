// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docgen/internal/docx"
	"github.com/pdiddy/docgen/internal/placeholder"
)

// Template is a loaded template: its resource description plus the text
// to fill.
type Template struct {
	Resource

	// Body is the template text without front matter. Brace delimiters
	// are already normalized to [[KEY]].
	Body string

	// Keys lists the placeholder keys Body references, sorted.
	Keys []string

	// Package is the raw .docx of a Word template. Body then holds its
	// paragraph text, one paragraph per line.
	Package []byte
}

// IsWord reports whether the template is filled inside a Word package
// rather than assembled from markup.
func (t *Template) IsWord() bool { return t.Package != nil }

// isWordFile reports whether file names a .docx template.
func isWordFile(file string) bool {
	return strings.EqualFold(path.Ext(file), ".docx")
}

// frontMatter is the optional YAML header of a template file.
type frontMatter struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Delimiter   string         `yaml:"delimiter"`
	Defaults    map[string]any `yaml:"defaults"`
}

const fence = "---"

// Parse builds a Template from raw text. A leading block fenced by "---"
// lines is read as YAML front matter; its title, description and
// delimiter override the resource's and its defaults are layered over the
// resource defaults.
//
// A .docx resource is kept as a package; its keys come from the text of
// its paragraphs.
func Parse(res Resource, data []byte) (*Template, error) {
	if isWordFile(res.File) {
		return parseWord(res, data)
	}
	text := strings.TrimPrefix(string(data), "\ufeff")

	fm, body, err := splitFrontMatter(text)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", res.Name, err)
	}
	if fm != nil {
		if fm.Title != "" {
			res.Title = fm.Title
		}
		if fm.Description != "" {
			res.Description = fm.Description
		}
		if fm.Delimiter != "" {
			res.Delimiter = fm.Delimiter
		}
		res.Defaults = placeholder.Merge(res.Defaults, fm.Defaults)
	}
	if err := checkDelimiter(res.Delimiter); err != nil {
		return nil, fmt.Errorf("template %s: %w", res.Name, err)
	}
	if res.Delimiter == DelimBraces {
		body = placeholder.NormalizeLegacy(body)
	}

	return &Template{
		Resource: res,
		Body:     body,
		Keys:     placeholder.Scan(body),
	}, nil
}

func parseWord(res Resource, data []byte) (*Template, error) {
	if err := checkDelimiter(res.Delimiter); err != nil {
		return nil, fmt.Errorf("template %s: %w", res.Name, err)
	}
	paras, err := docx.ReadTextFrom(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", res.Name, err)
	}
	body := strings.Join(paras, "\n")
	if res.Delimiter == DelimBraces {
		body = placeholder.NormalizeLegacy(body)
	}
	return &Template{
		Resource: res,
		Body:     body,
		Keys:     placeholder.Scan(body),
		Package:  data,
	}, nil
}

// splitFrontMatter separates a leading fenced YAML block from the body.
// Text that does not start with a fence line has no front matter.
func splitFrontMatter(text string) (*frontMatter, string, error) {
	first, rest, found := strings.Cut(text, "\n")
	if !found || strings.TrimRight(first, " \t\r") != fence {
		return nil, text, nil
	}

	var header []string
	for {
		var line string
		line, rest, found = strings.Cut(rest, "\n")
		if strings.TrimRight(line, " \t\r") == fence {
			break
		}
		if !found {
			return nil, "", fmt.Errorf("front matter is not closed by %q", fence)
		}
		header = append(header, line)
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(strings.Join(header, "\n")), &fm); err != nil {
		return nil, "", fmt.Errorf("parsing front matter: %w", err)
	}
	return &fm, rest, nil
}

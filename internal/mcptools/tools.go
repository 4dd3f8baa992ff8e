// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mcptools

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pdiddy/docgen/internal/engine"
	"github.com/pdiddy/docgen/internal/placeholder"
	"github.com/pdiddy/docgen/pkg/types"
)

// RenderDocumentInput is the input for the render_document tool.
type RenderDocumentInput struct {
	Template string         `json:"template" jsonschema:"template name, e.g. IQ (case-insensitive when unambiguous)"`
	Values   map[string]any `json:"values,omitempty" jsonschema:"placeholder values keyed by [A-Za-z0-9_]+ names"`
	Output   string         `json:"output" jsonschema:"destination file; .docx, .xlsx or .md selects the format"`
}

// RenderDocumentOutput is the result of the render_document tool.
type RenderDocumentOutput struct {
	Template    string             `json:"template"`
	OutputPath  string             `json:"outputPath"`
	Format      string             `json:"format"`
	Success     bool               `json:"success"`
	Unresolved  []string           `json:"unresolved"`
	Diagnostics []types.Diagnostic `json:"diagnostics,omitempty"`
	DurationMS  int64              `json:"durationMs"`
}

// ListTemplatesInput is the input for the list_templates tool.
type ListTemplatesInput struct{}

// TemplateInfo summarizes one template.
type TemplateInfo struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// ListTemplatesOutput is the result of the list_templates tool.
type ListTemplatesOutput struct {
	Templates []TemplateInfo `json:"templates"`
}

// DescribeTemplateInput is the input for the describe_template tool.
type DescribeTemplateInput struct {
	Name        string `json:"name" jsonschema:"template name"`
	IncludeBody bool   `json:"includeBody,omitempty" jsonschema:"also return the template text"`
}

// DescribeTemplateOutput is the result of the describe_template tool.
type DescribeTemplateOutput struct {
	Name        string            `json:"name"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Keys        []string          `json:"keys"`
	Missing     []string          `json:"missing"`
	Defaults    map[string]string `json:"defaults,omitempty"`
	Body        string            `json:"body,omitempty"`
}

// Service holds the engine used by the tool handlers.
type Service struct {
	eng       *engine.Engine
	outputDir string
}

// NewService creates a Service. Relative output paths are resolved
// against outputDir when it is set.
func NewService(eng *engine.Engine, outputDir string) *Service {
	return &Service{eng: eng, outputDir: outputDir}
}

// RenderDocument renders one template. A failed render is reported as a
// tool error carrying the failure message.
func (s *Service) RenderDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RenderDocumentInput,
) (*mcp.CallToolResult, RenderDocumentOutput, error) {
	if input.Template == "" {
		return nil, RenderDocumentOutput{}, errors.New("template is required")
	}
	if input.Output == "" {
		return nil, RenderDocumentOutput{}, errors.New("output is required")
	}

	dest := input.Output
	if s.outputDir != "" && !filepath.IsAbs(dest) {
		dest = filepath.Join(s.outputDir, dest)
	}

	res, err := s.eng.Render(ctx, input.Template, placeholder.Context(input.Values), dest)
	if err != nil {
		return nil, RenderDocumentOutput{}, fmt.Errorf("render %s: %w", input.Template, err)
	}

	return nil, RenderDocumentOutput{
		Template:    res.Template,
		OutputPath:  res.OutputPath,
		Format:      string(res.Format),
		Success:     res.Success,
		Unresolved:  res.Unresolved,
		Diagnostics: res.Diagnostics,
		DurationMS:  res.Duration.Milliseconds(),
	}, nil
}

// ListTemplates returns every template the engine can render.
func (s *Service) ListTemplates(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListTemplatesInput,
) (*mcp.CallToolResult, ListTemplatesOutput, error) {
	out := ListTemplatesOutput{Templates: []TemplateInfo{}}
	for _, name := range s.eng.Names() {
		tmpl, err := s.eng.Template(ctx, name)
		if err != nil {
			// Listed but unloadable; still worth showing by name.
			out.Templates = append(out.Templates, TemplateInfo{Name: name})
			continue
		}
		out.Templates = append(out.Templates, TemplateInfo{
			Name:        tmpl.Name,
			Title:       tmpl.Title,
			Description: tmpl.Description,
		})
	}
	return nil, out, nil
}

// DescribeTemplate returns the placeholder keys of one template, which of
// them have no default, and the defaults themselves.
func (s *Service) DescribeTemplate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DescribeTemplateInput,
) (*mcp.CallToolResult, DescribeTemplateOutput, error) {
	if input.Name == "" {
		return nil, DescribeTemplateOutput{}, errors.New("name is required")
	}
	d, err := s.eng.Describe(ctx, input.Name)
	if err != nil {
		return nil, DescribeTemplateOutput{}, err
	}

	out := DescribeTemplateOutput{
		Name:        d.Name,
		Title:       d.Title,
		Description: d.Description,
		Keys:        d.Keys,
		Missing:     d.Missing,
		Defaults:    d.Defaults,
	}
	if input.IncludeBody {
		out.Body = d.Body
	}
	return nil, out, nil
}

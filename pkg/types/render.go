// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DiagnosticKind classifies a non-fatal condition found while rendering.
type DiagnosticKind string

const (
	// DiagMalformedTable marks a pipe table whose rows do not fit the
	// header/separator/data structure or whose cell counts differ from the
	// header. Rendering continues with the padding/truncation rule.
	DiagMalformedTable DiagnosticKind = "malformed_table"

	// DiagUnresolved marks a placeholder whose key had no context value.
	DiagUnresolved DiagnosticKind = "unresolved_placeholder"

	// DiagInvalidKey marks a context key outside [A-Za-z0-9_]+. The value
	// is ignored.
	DiagInvalidKey DiagnosticKind = "invalid_context_key"
)

// Diagnostic is one non-fatal finding attached to a render result.
type Diagnostic struct {
	// Kind classifies the finding.
	Kind DiagnosticKind `json:"kind" yaml:"kind"`

	// Line is the 1-based line of the filled template text, 0 when the
	// finding is not tied to a line.
	Line int `json:"line,omitempty" yaml:"line,omitempty"`

	// Message is a human-readable description.
	Message string `json:"message" yaml:"message"`
}

// OutputFormat selects the persisted document format.
type OutputFormat string

const (
	FormatDOCX     OutputFormat = "docx"
	FormatMarkdown OutputFormat = "markdown"
	FormatXLSX     OutputFormat = "xlsx"
)

// RenderResult describes the outcome of one render call. It is returned to
// the caller and optionally recorded in the render history; it is never
// written next to the document.
type RenderResult struct {
	// Template is the template name the caller asked for.
	Template string `json:"template" yaml:"template"`

	// OutputPath is the absolute path of the written document. Empty when
	// the render failed before writing.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// Format is the format the document was written in.
	Format OutputFormat `json:"format,omitempty" yaml:"format,omitempty"`

	// Success reports whether the document was written.
	Success bool `json:"success" yaml:"success"`

	// Unresolved lists placeholder keys left in the output, sorted and
	// deduplicated. Empty means the template was fully resolved.
	Unresolved []string `json:"unresolved" yaml:"unresolved"`

	// Diagnostics lists non-fatal findings in source order.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`

	// Error holds the failure message when Success is false.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// RenderedAt is when the render finished.
	RenderedAt time.Time `json:"rendered_at" yaml:"rendered_at"`

	// Duration is how long the render took.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Warnings returns the diagnostics of the given kind.
func (r *RenderResult) Warnings(kind DiagnosticKind) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds settings for fetching templates from a remote registry.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// StyleConfig overrides the default document style. Zero fields keep the
// defaults (Arial 11pt, bold-only paragraphs at 13pt, centered top-level
// headings).
type StyleConfig struct {
	// FontFamily is the body font.
	FontFamily string `json:"font_family" yaml:"font_family" mapstructure:"font_family"`

	// FontSizePt is the body font size in points.
	FontSizePt float64 `json:"font_size_pt" yaml:"font_size_pt" mapstructure:"font_size_pt"`

	// EmphasisSizePt is the font size of bold-only paragraphs.
	EmphasisSizePt float64 `json:"emphasis_size_pt" yaml:"emphasis_size_pt" mapstructure:"emphasis_size_pt"`

	// HeadingAlign lists the alignment of heading levels 1 to 3:
	// left, center, right or justify.
	HeadingAlign []string `json:"heading_align" yaml:"heading_align" mapstructure:"heading_align"`
}

// HistoryConfig controls the render history database.
type HistoryConfig struct {
	// Enabled records every render.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config is the docgen configuration file.
type Config struct {
	// TemplatesDir holds user templates and their templates.yaml
	// manifest. Templates there shadow the built-in ones.
	TemplatesDir string `json:"templates_dir" yaml:"templates_dir" mapstructure:"templates_dir"`

	// RemoteURL is the base URL of a remote template registry. Its
	// templates rank between TemplatesDir and the built-ins.
	RemoteURL string `json:"remote_url,omitempty" yaml:"remote_url,omitempty" mapstructure:"remote_url"`

	// OutputDir is where relative output paths are resolved.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Defaults are placeholder values used when neither the template nor
	// the caller supplies a key.
	Defaults map[string]any `json:"defaults,omitempty" yaml:"defaults,omitempty" mapstructure:"defaults"`

	// LegacyDelimiters also resolves {{KEY}} markers in every template.
	LegacyDelimiters bool `json:"legacy_delimiters" yaml:"legacy_delimiters" mapstructure:"legacy_delimiters"`

	// DateKeys maps date keys to Go time layouts. Empty keeps the
	// built-in DOCUMENT_DATE and PREPARED_DATE.
	DateKeys map[string]string `json:"date_keys,omitempty" yaml:"date_keys,omitempty" mapstructure:"date_keys"`

	Style   StyleConfig   `json:"style" yaml:"style" mapstructure:"style"`
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`
	HTTP    HTTPConfig    `json:"http" yaml:"http" mapstructure:"http"`

	// Workers bounds concurrent renders in a batch. Zero uses GOMAXPROCS.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

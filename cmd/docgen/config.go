// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/docgen/internal/contextfile"
	"github.com/pdiddy/docgen/internal/document"
	"github.com/pdiddy/docgen/pkg/types"
)

func setConfigDefaults() {
	viper.SetDefault("templates_dir", "")
	viper.SetDefault("remote_url", "")
	viper.SetDefault("output_dir", "")
	viper.SetDefault("legacy_delimiters", false)
	viper.SetDefault("style.font_family", "Arial")
	viper.SetDefault("style.font_size_pt", 11)
	viper.SetDefault("style.emphasis_size_pt", 13)
	viper.SetDefault("style.heading_align", []string{"center", "left", "left"})
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.path", defaultHistoryPath())
	viper.SetDefault("http.timeout", 30*time.Second)
	viper.SetDefault("workers", 0)
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".docgen", "history.db")
	}
	return filepath.Join(home, ".local", "share", "docgen", "history.db")
}

// loadConfig decodes the merged viper configuration. Viper folds keys to
// lower case, so placeholder keys under defaults and date_keys are
// upper-cased again here.
func loadConfig() (types.Config, error) {
	var c types.Config
	if err := viper.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("reading configuration: %w", err)
	}

	c.Defaults = contextfile.UpperKeys(c.Defaults)
	if len(c.DateKeys) > 0 {
		keys := make(map[string]string, len(c.DateKeys))
		for k, layout := range c.DateKeys {
			keys[strings.ToUpper(k)] = layout
		}
		c.DateKeys = keys
	}
	return c, nil
}

var alignments = map[string]document.Alignment{
	"left":    document.AlignLeft,
	"center":  document.AlignCenter,
	"right":   document.AlignRight,
	"justify": document.AlignJustify,
	"both":    document.AlignJustify,
}

// styleFromConfig converts the configured style. Zero fields fall back to
// the document defaults when the document is assembled.
func styleFromConfig(sc types.StyleConfig) (document.Style, error) {
	s := document.Style{
		FontFamily:     sc.FontFamily,
		FontSizePt:     sc.FontSizePt,
		EmphasisSizePt: sc.EmphasisSizePt,
	}
	if len(sc.HeadingAlign) > len(s.HeadingAlign) {
		return s, fmt.Errorf("style.heading_align: %d entries, at most %d heading levels", len(sc.HeadingAlign), len(s.HeadingAlign))
	}
	for i, name := range sc.HeadingAlign {
		a, ok := alignments[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return s, fmt.Errorf("style.heading_align: unknown alignment %q", name)
		}
		s.HeadingAlign[i] = a
	}
	return s, nil
}

// resolveOutput joins relative output paths to the configured output
// directory.
func resolveOutput(c types.Config, path string) string {
	if c.OutputDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.OutputDir, path)
}

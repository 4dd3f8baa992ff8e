// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docgen/internal/engine"
	"github.com/pdiddy/docgen/internal/history"
	"github.com/pdiddy/docgen/internal/placeholder"
	"github.com/pdiddy/docgen/internal/registry"
	"github.com/pdiddy/docgen/pkg/types"
)

// app bundles the engine with the history store it records into.
type app struct {
	eng     *engine.Engine
	history *history.Store
}

// newApp builds the registry chain and the engine for one process.
func newApp(ctx context.Context, c types.Config, status io.Writer) (*app, error) {
	reg, err := buildRegistry(ctx, c)
	if err != nil {
		return nil, err
	}
	style, err := styleFromConfig(c.Style)
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{
		engine.WithDefaults(placeholder.Context(c.Defaults)),
		engine.WithStyle(style),
		engine.WithLegacyDelimiters(c.LegacyDelimiters),
		engine.WithStatus(status),
	}
	if len(c.DateKeys) > 0 {
		opts = append(opts, engine.WithDateKeys(c.DateKeys))
	}

	a := &app{}
	if c.History.Enabled && c.History.Path != "" {
		a.history, err = history.NewStore(c.History.Path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithRecorder(a.history))
	}

	a.eng = engine.New(reg, opts...)
	return a, nil
}

// Close releases the history store.
func (a *app) Close() error {
	if a.history == nil {
		return nil
	}
	return a.history.Close()
}

// buildRegistry chains the templates directory, the remote registry and
// the built-ins, in that order of precedence.
func buildRegistry(ctx context.Context, c types.Config) (registry.Registry, error) {
	var chain registry.Chain
	if c.TemplatesDir != "" {
		dir, err := registry.NewDir(c.TemplatesDir)
		if err != nil {
			return nil, err
		}
		chain = append(chain, dir)
	}
	if c.RemoteURL != "" {
		remote, err := registry.NewHTTP(ctx, c.RemoteURL, &http.Client{Timeout: c.HTTP.Timeout})
		if err != nil {
			return nil, err
		}
		chain = append(chain, remote)
	}
	return append(chain, registry.Builtin()), nil
}

// statusWriter returns stderr when --verbose is set.
func statusWriter(cmd *cobra.Command) io.Writer {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		return os.Stderr
	}
	return io.Discard
}

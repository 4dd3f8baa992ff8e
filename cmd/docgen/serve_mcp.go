// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docgen/internal/mcptools"
)

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Serve the render tools over the Model Context Protocol",
	Long: `Serve-mcp runs an MCP server on stdin/stdout exposing render_document,
list_templates and describe_template, so an assistant can render documents
directly. Relative output paths resolve against the configured output
directory. Progress lines go to stderr; stdout carries the protocol.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		return mcptools.Run(ctx, mcptools.NewService(a.eng, cfg.OutputDir), version)
	},
}

func init() {
	rootCmd.AddCommand(serveMCPCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mcptools exposes the render engine as Model Context Protocol
// tools so assistants can list, inspect and render templates.
package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer creates an MCP server with the document tools registered.
func NewServer(svc *Service, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "docgen",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_document",
		Description: "Fill a template's [[KEY]] placeholders with the given values and write the document. Returns the output path, the keys left unresolved and any diagnostics.",
	}, svc.RenderDocument)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_templates",
		Description: "List the templates available for rendering with their titles and descriptions.",
	}, svc.ListTemplates)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "describe_template",
		Description: "Show the placeholder keys a template uses, which of them have no default value, and the defaults.",
	}, svc.DescribeTemplate)

	return server
}

// Run serves the tools over stdin/stdout until ctx is done or the client
// disconnects.
func Run(ctx context.Context, svc *Service, version string) error {
	return NewServer(svc, version).Run(ctx, &mcp.StdioTransport{})
}

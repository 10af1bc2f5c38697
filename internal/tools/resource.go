package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"expensed/internal/taxonomy"
)

// CategoriesResourceURI identifies the category taxonomy resource.
const CategoriesResourceURI = "expense://categories"

// registerCategoriesResource exposes the taxonomy file as a read-through
// resource. Content is read from disk on every request, so edits to the file
// show up without a server restart. A missing or unreadable file is returned
// as an error, matching how store failures surface.
func registerCategoriesResource(s *server.MCPServer, tax *taxonomy.Reader) {
	res := mcp.NewResource(CategoriesResourceURI, "categories",
		mcp.WithResourceDescription("Expense category taxonomy as raw JSON text."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(res, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		content, err := tax.Read(ctx)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     content,
			},
		}, nil
	})
}

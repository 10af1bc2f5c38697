// Command mathtools is a tiny stdio tool server, unrelated to the expense
// store. It exists as a minimal example of the tool surface: two trivial
// tools, no state, no configuration.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	s := server.NewMCPServer("MathTools", "1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("add",
		mcp.WithDescription("Add two numbers."),
		mcp.WithNumber("a", mcp.Required(), mcp.Description("First addend.")),
		mcp.WithNumber("b", mcp.Required(), mcp.Description("Second addend.")),
	), handleAdd)

	s.AddTool(mcp.NewTool("greet",
		mcp.WithDescription("Return a greeting for a name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Who to greet.")),
	), handleGreet)

	if err := server.ServeStdio(s); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func handleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	a, ok := args["a"].(float64)
	if !ok {
		return mcp.NewToolResultError("a must be a number"), nil
	}
	b, ok := args["b"].(float64)
	if !ok {
		return mcp.NewToolResultError("b must be a number"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%g", a+b)), nil
}

func handleGreet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, ok := req.GetArguments()["name"].(string)
	if !ok {
		return mcp.NewToolResultError("name must be a string"), nil
	}
	return mcp.NewToolResultText("Hello, " + name + "!"), nil
}

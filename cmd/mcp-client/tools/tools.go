// Package tools provides test functions for MCP tools
package tools

import (
	"context"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// callTool calls name with args and returns the text of the first content
// item.
func callTool(ctx context.Context, c client.MCPClient, name string, args map[string]interface{}) (string, error) {
	callReq := mcp.CallToolRequest{}
	callReq.Params.Name = name
	callReq.Params.Arguments = args

	result, err := c.CallTool(ctx, callReq)
	if err != nil {
		log.Printf("Failed to call %s: %v", name, err)
		return "", err
	}
	if result.IsError {
		return "", fmt.Errorf("%s returned an error: %v", name, result.Content)
	}

	if len(result.Content) > 0 {
		if textContent, ok := result.Content[0].(mcp.TextContent); ok {
			return textContent.Text, nil
		}
	}
	return "", nil
}

// Names lists the tools this client can exercise
var Names = []string{"editor", "analyze", "locate_span", "highlights", "spellcheck", "project", "usage", "stats"}

// Run exercises the named tool against the server
func Run(ctx context.Context, c client.MCPClient, name string) error {
	switch name {
	case "editor":
		return TestEditor(ctx, c)
	case "analyze":
		return TestAnalyze(ctx, c)
	case "locate_span":
		return TestLocateSpan(ctx, c)
	case "highlights":
		return TestHighlights(ctx, c)
	case "spellcheck":
		return TestSpellCheck(ctx, c)
	case "project":
		return TestProject(ctx, c)
	case "usage":
		return TestUsage(ctx, c)
	case "stats":
		return TestStats(ctx, c)
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

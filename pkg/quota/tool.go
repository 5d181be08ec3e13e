package quota

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Code-Monger/InkPilot/pkg/stats"
)

func formatLimit(n int) string {
	if n == Unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", n)
}

// FormatSummary renders a usage summary for people.
func FormatSummary(s Summary) string {
	result := fmt.Sprintf("Usage for %s\n\n", s.UserID)
	result += fmt.Sprintf("Plan: %s\n", s.Plan)
	result += fmt.Sprintf("Grammar checks: %d used, %s remaining of %s\n",
		s.Grammar.Used, formatLimit(s.Grammar.Remaining), formatLimit(s.Grammar.Limit))
	result += fmt.Sprintf("Style suggestions: %d used, %s remaining of %s\n",
		s.Style.Used, formatLimit(s.Style.Remaining), formatLimit(s.Style.Limit))
	result += fmt.Sprintf("Resets at: %s\n", s.ResetTime.Format(time.RFC3339))
	return result
}

// HandleUsage returns the usage handler bound to m
func HandleUsage(m *Manager) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		arguments := request.Params.Arguments

		operation, _ := arguments["operation"].(string)
		if operation == "" {
			operation = "get"
		}

		userID, ok := arguments["user_id"].(string)
		if !ok || userID == "" {
			return nil, fmt.Errorf("user_id must be a non-empty string")
		}

		switch operation {
		case "get":
		case "set_plan":
			planName, ok := arguments["plan"].(string)
			if !ok {
				return nil, fmt.Errorf("plan must be a string")
			}
			plan, err := ParsePlan(planName)
			if err != nil {
				return nil, err
			}
			if err := m.SetPlan(userID, plan); err != nil {
				return nil, fmt.Errorf("failed to set plan: %w", err)
			}
		default:
			return nil, fmt.Errorf("unsupported operation: %s", operation)
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: FormatSummary(m.Usage(userID)),
				},
			},
		}, nil
	}
}

// RegisterUsage registers the usage tool with the MCP server
func RegisterUsage(mcpServer *server.MCPServer, m *Manager) {
	usageTool := mcp.NewTool("usage",
		mcp.WithDescription("Reports a user's daily analysis usage and changes their plan"),
		mcp.WithString("operation",
			mcp.Description("Operation to perform: 'get' (default) or 'set_plan'"),
		),
		mcp.WithString("user_id",
			mcp.Description("User whose usage to report"),
			mcp.Required(),
		),
		mcp.WithString("plan",
			mcp.Description("New plan for 'set_plan': 'free', 'pro' or 'enterprise'"),
		),
	)

	mcpServer.AddTool(usageTool, stats.WrapHandler("usage", HandleUsage(m)))

	log.Printf("[Quota] Registered usage tool (free limits: %d grammar, %d style)", m.limits.Grammar, m.limits.Style)
}

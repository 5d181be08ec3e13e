package project

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Code-Monger/InkPilot/pkg/stats"
)

func optionalString(arguments map[string]interface{}, key string) *string {
	if v, ok := arguments[key].(string); ok {
		return &v
	}
	return nil
}

func formatProject(p Project, withContent bool) string {
	result := fmt.Sprintf("Project ID: %s\n", p.ID)
	result += fmt.Sprintf("Title: %s\n", p.Title)
	if p.Description != "" {
		result += fmt.Sprintf("Description: %s\n", p.Description)
	}
	result += fmt.Sprintf("Created: %s\n", p.CreatedAt.Format(time.RFC3339))
	result += fmt.Sprintf("Updated: %s\n", p.UpdatedAt.Format(time.RFC3339))
	result += fmt.Sprintf("Length: %d bytes\n", len(p.Content))
	if withContent {
		result += "\n" + p.Content + "\n"
	}
	return result
}

// HandleProject returns the project handler bound to s
func HandleProject(s *Store) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		arguments := request.Params.Arguments

		operation, ok := arguments["operation"].(string)
		if !ok {
			return nil, fmt.Errorf("operation must be a string")
		}
		userID, ok := arguments["user_id"].(string)
		if !ok || userID == "" {
			return nil, fmt.Errorf("user_id must be a non-empty string")
		}
		projectID, _ := arguments["project_id"].(string)
		if operation != "create" && operation != "list" && projectID == "" {
			return nil, fmt.Errorf("project_id is required for '%s'", operation)
		}

		var resultText string
		switch operation {
		case "create":
			title, _ := arguments["title"].(string)
			content, _ := arguments["content"].(string)
			description, _ := arguments["description"].(string)
			p, err := s.Create(userID, title, content, description)
			if err != nil {
				return nil, fmt.Errorf("failed to create project: %w", err)
			}
			resultText = "Project created\n\n" + formatProject(p, false)

		case "get":
			p, err := s.Get(userID, projectID)
			if err != nil {
				return nil, err
			}
			resultText = formatProject(p, true)

		case "update":
			p, err := s.Update(userID, projectID, Update{
				Title:       optionalString(arguments, "title"),
				Content:     optionalString(arguments, "content"),
				Description: optionalString(arguments, "description"),
			})
			if err != nil {
				return nil, err
			}
			resultText = "Project updated\n\n" + formatProject(p, false)

		case "list":
			projects := s.List(userID)
			resultText = fmt.Sprintf("Projects (%d)\n\n", len(projects))
			for i, p := range projects {
				resultText += fmt.Sprintf("%d. %s (%s), updated %s\n", i+1, p.Title, p.ID, p.UpdatedAt.Format(time.RFC3339))
			}

		case "delete":
			if err := s.Delete(userID, projectID); err != nil {
				return nil, err
			}
			resultText = fmt.Sprintf("Project %s deleted\n", projectID)

		default:
			return nil, fmt.Errorf("unsupported operation: %s", operation)
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: resultText,
				},
			},
		}, nil
	}
}

// RegisterProject registers the project tool with the MCP server
func RegisterProject(mcpServer *server.MCPServer, s *Store) {
	projectTool := mcp.NewTool("project",
		mcp.WithDescription("Creates, reads, updates, lists and deletes a user's writing projects"),
		mcp.WithString("operation",
			mcp.Description("Operation to perform: 'create', 'get', 'update', 'list' or 'delete'"),
			mcp.Required(),
		),
		mcp.WithString("user_id",
			mcp.Description("Owner of the projects"),
			mcp.Required(),
		),
		mcp.WithString("project_id",
			mcp.Description("Project ID (for 'get', 'update' and 'delete')"),
		),
		mcp.WithString("title",
			mcp.Description("Project title (for 'create' and 'update')"),
		),
		mcp.WithString("content",
			mcp.Description("Project text (for 'create' and 'update')"),
		),
		mcp.WithString("description",
			mcp.Description("Short description (for 'create' and 'update')"),
		),
	)

	mcpServer.AddTool(projectTool, stats.WrapHandler("project", HandleProject(s)))

	log.Printf("[Project] Registered project tool")
}

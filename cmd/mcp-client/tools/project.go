package tools

import (
	"context"
	"fmt"
	"log"
	"regexp"

	"github.com/mark3labs/mcp-go/client"
)

var projectIDPattern = regexp.MustCompile(`Project ID: (\S+)`)

// TestProject creates, edits through a session, lists and deletes a project
func TestProject(ctx context.Context, c client.MCPClient) error {
	log.Printf("Running project test")

	text, err := callTool(ctx, c, "project", map[string]interface{}{
		"operation": "create",
		"user_id":   "client",
		"title":     "Client test project",
		"content":   sampleText,
	})
	if err != nil {
		return err
	}
	log.Printf("Create result:\n%s", text)

	match := projectIDPattern.FindStringSubmatch(text)
	if match == nil {
		return fmt.Errorf("no project ID in create result")
	}
	projectID := match[1]

	if _, err := callTool(ctx, c, "editor", map[string]interface{}{
		"operation":  "open",
		"session_id": "client-project",
		"user_id":    "client",
		"project_id": projectID,
	}); err != nil {
		return err
	}
	if _, err := callTool(ctx, c, "editor", map[string]interface{}{
		"operation":  "edit",
		"session_id": "client-project",
		"text":       "A corrected draft.",
	}); err != nil {
		return err
	}
	if _, err := callTool(ctx, c, "editor", map[string]interface{}{"operation": "save", "session_id": "client-project"}); err != nil {
		return err
	}
	callTool(ctx, c, "editor", map[string]interface{}{"operation": "close", "session_id": "client-project"})

	text, err = callTool(ctx, c, "project", map[string]interface{}{"operation": "get", "user_id": "client", "project_id": projectID})
	if err != nil {
		return err
	}
	log.Printf("Saved project:\n%s", text)

	text, err = callTool(ctx, c, "project", map[string]interface{}{"operation": "list", "user_id": "client"})
	if err != nil {
		return err
	}
	log.Printf("Projects:\n%s", text)

	_, err = callTool(ctx, c, "project", map[string]interface{}{"operation": "delete", "user_id": "client", "project_id": projectID})
	return err
}

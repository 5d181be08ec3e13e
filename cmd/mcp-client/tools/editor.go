package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/client"

	"github.com/Code-Monger/InkPilot/pkg/highlight"
)

const sampleText = "He dont like the new editor. Their going to the libary tomorow, and it was very very good."

// TestEditor walks a session through open, highlights, apply and close
func TestEditor(ctx context.Context, c client.MCPClient) error {
	log.Printf("Running editor test")

	text, err := callTool(ctx, c, "editor", map[string]interface{}{
		"operation":  "open",
		"session_id": "client-editor",
		"text":       sampleText,
		"title":      "Client test",
	})
	if err != nil {
		return err
	}
	log.Printf("Open result:\n%s", text)

	defer func() {
		if _, err := callTool(ctx, c, "editor", map[string]interface{}{"operation": "close", "session_id": "client-editor"}); err != nil {
			log.Printf("Failed to close session: %v", err)
		}
	}()

	if _, err := callTool(ctx, c, "analyze", map[string]interface{}{"session_id": "client-editor", "kinds": []interface{}{"grammar"}}); err != nil {
		return err
	}

	text, err = callTool(ctx, c, "editor", map[string]interface{}{
		"operation":  "highlights",
		"session_id": "client-editor",
		"format":     "json",
	})
	if err != nil {
		return err
	}
	log.Printf("Highlights:\n%s", text)

	text, err = callTool(ctx, c, "editor", map[string]interface{}{"operation": "get", "session_id": "client-editor"})
	if err != nil {
		return err
	}
	log.Printf("Session:\n%s", text)
	return nil
}

// TestAnalyze runs both passes and applies the first grammar finding
func TestAnalyze(ctx context.Context, c client.MCPClient) error {
	log.Printf("Running analyze test")

	if _, err := callTool(ctx, c, "editor", map[string]interface{}{
		"operation":  "open",
		"session_id": "client-analyze",
		"user_id":    "client",
		"text":       sampleText,
	}); err != nil {
		return err
	}
	defer callTool(ctx, c, "editor", map[string]interface{}{"operation": "close", "session_id": "client-analyze"})

	text, err := callTool(ctx, c, "analyze", map[string]interface{}{"session_id": "client-analyze"})
	if err != nil {
		return err
	}
	log.Printf("Analyze result:\n%s", text)

	findingID, err := firstFindingID(ctx, c, "client-analyze")
	if err != nil {
		return err
	}
	if findingID == "" {
		log.Printf("No findings to apply")
		return nil
	}

	text, err = callTool(ctx, c, "editor", map[string]interface{}{
		"operation":  "apply",
		"session_id": "client-analyze",
		"finding_id": findingID,
	})
	if err != nil {
		return fmt.Errorf("failed to apply %s: %w", findingID, err)
	}
	log.Printf("Apply result:\n%s", text)
	return nil
}

// firstFindingID returns the finding behind the first highlighted region
// of the session, or "" when nothing is highlighted.
func firstFindingID(ctx context.Context, c client.MCPClient, sessionID string) (string, error) {
	text, err := callTool(ctx, c, "editor", map[string]interface{}{
		"operation":  "highlights",
		"session_id": sessionID,
		"format":     "json",
	})
	if err != nil {
		return "", err
	}

	var segments []highlight.Segment
	if err := json.Unmarshal([]byte(text), &segments); err != nil {
		return "", fmt.Errorf("failed to parse highlights: %w", err)
	}
	for _, s := range segments {
		if s.Region != nil {
			return s.Region.FindingID, nil
		}
	}
	return "", nil
}

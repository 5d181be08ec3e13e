package tools

import (
	"context"
	"log"

	"github.com/mark3labs/mcp-go/client"
)

// TestUsage reads the client user's quota usage
func TestUsage(ctx context.Context, c client.MCPClient) error {
	log.Printf("Running usage test")

	text, err := callTool(ctx, c, "usage", map[string]interface{}{
		"operation": "get",
		"user_id":   "client",
	})
	if err != nil {
		return err
	}

	log.Printf("Usage result:\n%s", text)
	return nil
}

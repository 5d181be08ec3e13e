package tools

import (
	"context"
	"log"

	"github.com/mark3labs/mcp-go/client"
)

// TestSpellCheck tests the spellcheck tool
func TestSpellCheck(ctx context.Context, c client.MCPClient) error {
	log.Printf("Running spellcheck test")

	text, err := callTool(ctx, c, "spellcheck", map[string]interface{}{
		"text":              sampleText,
		"custom_dictionary": []interface{}{"tomorow"},
	})
	if err != nil {
		return err
	}

	log.Printf("Spellcheck result:\n%s", text)
	return nil
}

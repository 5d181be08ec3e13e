package tools

import (
	"context"
	"log"

	"github.com/mark3labs/mcp-go/client"
)

// TestLocateSpan tests the locate_span tool with exact, normalized and
// missing claims
func TestLocateSpan(ctx context.Context, c client.MCPClient) error {
	log.Printf("Running locate_span test")

	cases := []struct {
		claimed string
		context string
	}{
		{claimed: "dont"},
		{claimed: "he DONT like"},
		{claimed: "the", context: "to the libary"},
		{claimed: "purple elephant"},
	}

	for _, tc := range cases {
		text, err := callTool(ctx, c, "locate_span", map[string]interface{}{
			"text":         sampleText,
			"claimed_text": tc.claimed,
			"context":      tc.context,
		})
		if err != nil {
			return err
		}
		log.Printf("locate_span %q:\n%s", tc.claimed, text)
	}
	return nil
}

// TestHighlights tests the highlights tool with overlapping findings in
// both wire shapes
func TestHighlights(ctx context.Context, c client.MCPClient) error {
	log.Printf("Running highlights test")

	text, err := callTool(ctx, c, "highlights", map[string]interface{}{
		"text": "The quick brown fox jumps over the lazy dog.",
		"findings": []interface{}{
			map[string]interface{}{"id": "error_1", "originalText": "quick brown", "message": "Example", "suggestions": []interface{}{"fast brown"}, "type": "grammar"},
			map[string]interface{}{"id": "style_1", "originalText": "brown fox jumps", "message": "Overlaps error_1", "suggestion": "fox leaps", "type": "style"},
			map[string]interface{}{"id": "style_2", "originalText": "lazy dog", "message": "Example", "suggestion": "sleepy dog", "type": "tone"},
		},
	})
	if err != nil {
		return err
	}
	log.Printf("highlights result:\n%s", text)
	return nil
}

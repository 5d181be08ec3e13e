package spellcheck

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Code-Monger/InkPilot/pkg/stats"
)

// FormatMisspellings renders check results for people.
func FormatMisspellings(results []Misspelling) string {
	if len(results) == 0 {
		return "No spelling issues found."
	}

	var summary strings.Builder
	summary.WriteString(fmt.Sprintf("Found %d spelling issues:\n\n", len(results)))
	for i, issue := range results {
		summary.WriteString(fmt.Sprintf("%d. Word: %s\n", i+1, issue.Word))
		summary.WriteString(fmt.Sprintf("   Range: %s\n", issue.Range))
		summary.WriteString(fmt.Sprintf("   Context: %s\n", issue.Context))
		if len(issue.Suggestions) > 0 {
			summary.WriteString(fmt.Sprintf("   Suggestions: %s\n", strings.Join(issue.Suggestions, ", ")))
		}
		summary.WriteString("\n")
	}
	return summary.String()
}

// HandleSpellCheck is the handler function for the spellcheck tool
func (c *Checker) HandleSpellCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := request.Params.Arguments

	text, ok := arguments["text"].(string)
	if !ok {
		return nil, fmt.Errorf("text must be a string")
	}

	// Extra words accepted for this request only
	accepted := make(map[string]bool)
	if customDictVal, ok := arguments["custom_dictionary"].([]interface{}); ok {
		for _, word := range customDictVal {
			if wordStr, ok := word.(string); ok {
				accepted[normalizeWord(wordStr)] = true
			}
		}
	}

	var results []Misspelling
	for _, m := range c.Check(text) {
		if !accepted[normalizeWord(m.Word)] {
			results = append(results, m)
		}
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: FormatMisspellings(results),
			},
		},
	}, nil
}

// RegisterSpellCheck registers the spellcheck tool with the MCP server
func RegisterSpellCheck(mcpServer *server.MCPServer, c *Checker) {
	spellCheckTool := mcp.NewTool("spellcheck",
		mcp.WithDescription("Checks the spelling of prose against an English dictionary. Reports each unknown word with its byte range, surrounding context and up to three corrections. Capitalized words inside a sentence, acronyms and words containing digits are treated as names and skipped."),
		mcp.WithString("text",
			mcp.Description("The text to check"),
			mcp.Required(),
		),
		mcp.WithArray("custom_dictionary",
			mcp.Description("A list of custom words to consider as correctly spelled"),
		),
	)

	// Wrap the handler with stats tracking
	wrappedHandler := stats.WrapHandler("spellcheck", c.HandleSpellCheck)

	mcpServer.AddTool(spellCheckTool, wrappedHandler)

	log.Printf("[SpellCheck] Registered spellcheck tool")
}

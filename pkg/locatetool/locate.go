// Package locatetool exposes the span locator and the highlight assembler
// directly as MCP tools, for clients that manage their own documents.
package locatetool

import (
	"context"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/text/unicode/norm"

	"github.com/Code-Monger/InkPilot/pkg/finding"
	"github.com/Code-Monger/InkPilot/pkg/spanlocate"
	"github.com/Code-Monger/InkPilot/pkg/stats"
)

// Match is a located span in every offset unit a client may need.
type Match struct {
	Bytes spanlocate.Range `json:"bytes"`
	Runes spanlocate.Range `json:"runes"`
	UTF16 spanlocate.Range `json:"utf16"`
	Text  string           `json:"text"`
}

// LocateSpan finds claimed in text, anchored on context when it is given.
// All three are brought to NFC first, as session documents are, so the
// offsets refer to the NFC form of text.
func LocateSpan(text, claimed, context string) (Match, bool) {
	text = norm.NFC.String(text)
	claimed = norm.NFC.String(claimed)
	context = norm.NFC.String(context)

	r, ok := spanlocate.NewProjection(text).LocateInContext(claimed, context)
	if !ok {
		return Match{}, false
	}
	offsets := spanlocate.NewOffsetTable(text)
	return Match{
		Bytes: r,
		Runes: offsets.RuneRange(r),
		UTF16: offsets.UTF16Range(r),
		Text:  text[r.Start:r.End],
	}, true
}

// HandleLocateSpan is the handler function for the locate_span tool
func HandleLocateSpan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := request.Params.Arguments

	text, ok := arguments["text"].(string)
	if !ok {
		return nil, fmt.Errorf("text must be a string")
	}

	claimed, ok := arguments["claimed_text"].(string)
	if !ok {
		return nil, fmt.Errorf("claimed_text must be a string")
	}

	contextPhrase, _ := arguments["context"].(string)

	var resultText string
	if m, found := LocateSpan(text, claimed, contextPhrase); found {
		resultText = fmt.Sprintf("Found %q\n\n", claimed)
		resultText += fmt.Sprintf("Bytes: %s\n", m.Bytes)
		resultText += fmt.Sprintf("Runes: %s\n", m.Runes)
		resultText += fmt.Sprintf("UTF-16: %s\n", m.UTF16)
		resultText += fmt.Sprintf("Matched text: %s\n", m.Text)
	} else {
		resultText = fmt.Sprintf("No match for %q\n", claimed)
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

// RegisterLocate registers the locate_span and highlights tools with the
// MCP server
func RegisterLocate(mcpServer *server.MCPServer, opts finding.ResolveOptions) {
	locateTool := mcp.NewTool("locate_span",
		mcp.WithDescription("Finds the span of a document that a writing assistant referred to. Tries an exact match first, then a match that ignores case, punctuation and runs of whitespace. Reports the span as byte, rune and UTF-16 offsets into the NFC normalized text, or that nothing matched."),
		mcp.WithString("text",
			mcp.Description("The document text"),
			mcp.Required(),
		),
		mcp.WithString("claimed_text",
			mcp.Description("The text the assistant claims appears in the document"),
			mcp.Required(),
		),
		mcp.WithString("context",
			mcp.Description("A longer phrase around the claimed text, used to pick among repeated occurrences"),
		),
	)

	highlightsTool := mcp.NewTool("highlights",
		mcp.WithDescription("Locates a list of grammar and style findings in a document and assembles the non-overlapping highlight regions. Accepts findings either in the annotator wire shapes (originalText, suggestions or suggestion, type) or as resolved findings (kind, category, claimed_text, replacements). Returns the regions, as byte offsets into the NFC normalized text, with a plain and an HTML rendering."),
		mcp.WithString("text",
			mcp.Description("The document text"),
			mcp.Required(),
		),
		mcp.WithArray("findings",
			mcp.Description("The findings to highlight, as an array or a JSON encoded array"),
			mcp.Required(),
		),
		mcp.WithString("kind",
			mcp.Description("Kind of findings given in the wire shape without their own kind: 'grammar' or 'style' (default: inferred)"),
		),
	)

	mcpServer.AddTool(locateTool, stats.WrapHandler("locate_span", HandleLocateSpan))
	mcpServer.AddTool(highlightsTool, stats.WrapHandler("highlights", HandleHighlights(opts)))

	log.Printf("[Locate] Registered locate_span and highlights tools")
}

package analysis

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Code-Monger/InkPilot/pkg/finding"
	"github.com/Code-Monger/InkPilot/pkg/highlight"
	"github.com/Code-Monger/InkPilot/pkg/quota"
	"github.com/Code-Monger/InkPilot/pkg/stats"
)

// parseKinds accepts either an array of kind names or a comma separated
// string.
func parseKinds(value interface{}) ([]finding.Kind, error) {
	var names []string
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	case []interface{}:
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("kinds must contain strings")
			}
			names = append(names, name)
		}
	default:
		return nil, fmt.Errorf("kinds must be an array or a comma separated string")
	}

	kinds := make([]finding.Kind, 0, len(names))
	for _, name := range names {
		kind, err := finding.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// FormatResult renders a result for people.
func FormatResult(r Result) string {
	resultText := fmt.Sprintf("Analysis of session %s\n\n", r.SessionID)
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusOK:
			resultText += fmt.Sprintf("%s: %d highlighted, %d could not be located, %d rejected",
				o.Kind, o.Resolved, o.Dropped, o.Rejected)
			if o.Revision != o.AnalyzedRevision {
				resultText += fmt.Sprintf(" (analyzed revision %d, attached to revision %d)", o.AnalyzedRevision, o.Revision)
			}
			resultText += "\n"
		case StatusQuotaExceeded:
			resultText += fmt.Sprintf("%s: %v\n", o.Kind, o.Err)
		default:
			resultText += fmt.Sprintf("%s: failed: %v\n", o.Kind, o.Err)
		}
		if o.Quota != nil && o.Quota.Allowed && o.Quota.Limit != quota.Unlimited {
			resultText += fmt.Sprintf("  %d of %d remaining today, resets at %s\n",
				o.Quota.Remaining, o.Quota.Limit, o.Quota.ResetTime.Format(time.RFC3339))
		}
	}
	return resultText
}

// HandleAnalyze is the handler function for the analyze tool
func (a *Analyzer) HandleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := request.Params.Arguments

	sessionID, ok := arguments["session_id"].(string)
	if !ok || sessionID == "" {
		return nil, fmt.Errorf("session_id must be a non-empty string")
	}

	kinds, err := parseKinds(arguments["kinds"])
	if err != nil {
		return nil, err
	}

	result, err := a.Analyze(ctx, sessionID, kinds)
	if err != nil {
		return nil, err
	}

	succeeded := 0
	for _, o := range result.Outcomes {
		if o.Err == nil {
			succeeded++
		}
	}
	if succeeded == 0 {
		return nil, result.Err()
	}

	resultText := FormatResult(result)
	segments, err := a.store.Highlights(sessionID)
	if err == nil {
		resultText += "\nHighlights:\n" + highlight.RenderPlain(segments) + "\n"
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

// RegisterAnalyze registers the analyze tool with the MCP server
func RegisterAnalyze(mcpServer *server.MCPServer, a *Analyzer) {
	analyzeTool := mcp.NewTool("analyze",
		mcp.WithDescription("Runs grammar and style analysis over an open editor session. Each kind is checked against the user's daily quota, requested concurrently, and its findings are located in the document as it is when the response arrives. Findings whose text can no longer be found are dropped silently and counted."),
		mcp.WithString("session_id",
			mcp.Description("The editor session to analyze"),
			mcp.Required(),
		),
		mcp.WithArray("kinds",
			mcp.Description("Kinds to run: 'grammar', 'style' (default: both)"),
		),
	)

	// Wrap the handler with stats tracking
	wrappedHandler := stats.WrapHandler("analyze", a.HandleAnalyze)

	mcpServer.AddTool(analyzeTool, wrappedHandler)

	log.Printf("[Analysis] Registered analyze tool")
}

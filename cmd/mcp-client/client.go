package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Code-Monger/InkPilot/cmd/mcp-client/tools"
)

// Client drives an InkPilot server through its editing workflow: open a
// document, analyze it, inspect the highlights and apply a suggestion.
type Client struct {
	serverURL string
	mcpClient client.MCPClient
}

// NewClient creates a client for the server at serverURL
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: serverURL,
	}
}

// runResult is the outcome of exercising one tool.
type runResult struct {
	tool    string
	err     error
	skipped bool
	elapsed time.Duration
}

// planRuns picks the tools to exercise. "all" selects every tool the client
// knows, in workflow order. Tools the server does not offer are returned
// separately.
func planRuns(selection string, offered []mcp.Tool) (run, missing []string) {
	available := make(map[string]bool, len(offered))
	for _, tool := range offered {
		available[tool.Name] = true
	}

	wanted := []string{selection}
	if selection == "all" {
		wanted = tools.Names
	}
	for _, name := range wanted {
		if available[name] {
			run = append(run, name)
		} else {
			missing = append(missing, name)
		}
	}
	return run, missing
}

// formatSummary renders one line per tool and a closing tally.
func formatSummary(results []runResult) string {
	var sb strings.Builder
	failed, skipped := 0, 0
	for _, r := range results {
		switch {
		case r.skipped:
			skipped++
			fmt.Fprintf(&sb, "  SKIP %s (not offered by server)\n", r.tool)
		case r.err != nil:
			failed++
			fmt.Fprintf(&sb, "  FAIL %s (%v): %v\n", r.tool, r.elapsed.Round(time.Millisecond), r.err)
		default:
			fmt.Fprintf(&sb, "  ok   %s (%v)\n", r.tool, r.elapsed.Round(time.Millisecond))
		}
	}
	fmt.Fprintf(&sb, "%d passed, %d failed, %d skipped\n", len(results)-failed-skipped, failed, skipped)
	return sb.String()
}

// Run connects, exercises the selected tools and reads the session and
// server resources. Every selected tool runs even after a failure; the
// returned error counts the failures.
func (c *Client) Run(ctx context.Context, selection string) error {
	log.Printf("Connecting to InkPilot at %s...", c.serverURL)
	sseClient, err := client.NewSSEMCPClient(c.serverURL)
	if err != nil {
		return fmt.Errorf("failed to create SSE client: %w", err)
	}
	if err := sseClient.Start(ctx); err != nil {
		return fmt.Errorf("failed to start SSE client: %w", err)
	}
	defer sseClient.Close()
	c.mcpClient = sseClient

	if err := c.initialize(ctx); err != nil {
		return err
	}

	toolsResult, err := c.mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("failed to list tools: %w", err)
	}
	names := make([]string, 0, len(toolsResult.Tools))
	for _, tool := range toolsResult.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	log.Printf("Server offers %d tools: %s", len(names), strings.Join(names, ", "))

	run, missing := planRuns(selection, toolsResult.Tools)
	results := make([]runResult, 0, len(run)+len(missing))
	for _, name := range run {
		log.Printf("Exercising %s...", name)
		start := time.Now()
		err := tools.Run(ctx, c.mcpClient, name)
		if err != nil {
			log.Printf("%s failed: %v", name, err)
		}
		results = append(results, runResult{tool: name, err: err, elapsed: time.Since(start)})
	}
	for _, name := range missing {
		results = append(results, runResult{tool: name, skipped: true})
	}

	for _, uri := range []string{"session://list", "server://info"} {
		text, err := c.readResource(ctx, uri)
		if err != nil {
			log.Printf("Could not read %s: %v", uri, err)
			continue
		}
		log.Printf("%s:\n%s", uri, text)
	}

	log.Printf("Summary:\n%s", formatSummary(results))
	for _, r := range results {
		if r.err != nil {
			return fmt.Errorf("one or more tools failed")
		}
	}
	return nil
}

func (c *Client) initialize(ctx context.Context) error {
	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION

	initResult, err := c.mcpClient.Initialize(ctx, initReq)
	if err != nil {
		return fmt.Errorf("failed to initialize client: %w", err)
	}
	log.Printf("Connected, server capabilities: %+v", initResult.Capabilities)
	return nil
}

// readResource returns the text of the first content item of uri.
func (c *Client) readResource(ctx context.Context, uri string) (string, error) {
	readReq := mcp.ReadResourceRequest{}
	readReq.Params.URI = uri

	result, err := c.mcpClient.ReadResource(ctx, readReq)
	if err != nil {
		return "", err
	}
	for _, content := range result.Contents {
		if textContent, ok := content.(mcp.TextResourceContents); ok {
			return textContent.Text, nil
		}
	}
	return "", fmt.Errorf("%s has no text content", uri)
}

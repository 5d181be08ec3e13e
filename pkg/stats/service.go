package stats

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Code-Monger/InkPilot/pkg/metrics"
)

// ToolHandler is the signature of every MCP tool handler
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

var (
	// Global stats manager instance
	globalStatsManager *StatsManager
	// Optional Prometheus collectors fed alongside the stats file
	globalMetrics *metrics.Metrics
)

// InitStatsManager initializes the global stats manager
func InitStatsManager(dataDir string) error {
	statsFilePath := filepath.Join(dataDir, "stats.json")
	manager, err := NewStatsManager(statsFilePath)
	if err != nil {
		return err
	}
	globalStatsManager = manager
	return nil
}

// GetStatsManager returns the global stats manager
func GetStatsManager() *StatsManager {
	return globalStatsManager
}

// SetMetrics makes WrapHandler report tool calls to m as well
func SetMetrics(m *metrics.Metrics) {
	globalMetrics = m
}

// HandleGetStats handles requests to get tool usage statistics
func HandleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Printf("[Stats] Received request to get stats")

	if globalStatsManager == nil {
		log.Printf("[Stats] Error: stats manager not initialized")
		return nil, fmt.Errorf("stats manager not initialized")
	}

	statsText := FormatStats(globalStatsManager.GetSessionStats(), globalStatsManager.GetPersistentStats())

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: statsText,
			},
		},
	}, nil
}

// RecordToolUsage records statistics for a tool call
func RecordToolUsage(toolName string, startTime time.Time, request mcp.CallToolRequest, result *mcp.CallToolResult, callErr error) {
	executionTime := time.Since(startTime)
	globalMetrics.ObserveToolCall(toolName, executionTime, callErr)

	if globalStatsManager == nil {
		log.Printf("[Stats] Warning: stats manager not initialized, cannot record tool usage")
		return
	}

	inputBytes := estimateInputBytes(request)
	outputBytes := estimateOutputBytes(result)

	log.Printf("[Stats] Recording usage for tool '%s': execution time=%v, input=%d bytes, output=%d bytes, failed=%t",
		toolName, executionTime, inputBytes, outputBytes, callErr != nil)

	if err := globalStatsManager.RecordToolUsage(toolName, executionTime, inputBytes, outputBytes, callErr != nil); err != nil {
		// Log the error but don't fail the request
		log.Printf("[Stats] Failed to record tool usage: %v", err)
	}
}

// WrapHandler wraps a tool handler with stats tracking
func WrapHandler(toolName string, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()

		result, err := handler(ctx, request)
		RecordToolUsage(toolName, startTime, request, result, err)
		if err != nil {
			log.Printf("[Stats] Error executing tool '%s': %v", toolName, err)
			return nil, err
		}

		return result, nil
	}
}

// estimateInputBytes sums the size of the request arguments
func estimateInputBytes(request mcp.CallToolRequest) int {
	n := 0
	for key, value := range request.Params.Arguments {
		n += len(key)
		switch v := value.(type) {
		case string:
			n += len(v)
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok {
					n += len(s)
				} else {
					n++
				}
			}
		default:
			n++
		}
	}
	return n
}

// estimateOutputBytes sums the size of the text content in the result
func estimateOutputBytes(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	n := 0
	for _, content := range result.Content {
		if c, ok := content.(mcp.TextContent); ok {
			n += len(c.Text)
		}
	}
	return n
}

// RegisterStats registers the stats tool with the MCP server. InitStatsManager
// must have been called first.
func RegisterStats(mcpServer *server.MCPServer) error {
	if globalStatsManager == nil {
		return fmt.Errorf("stats manager not initialized")
	}

	statsTool := mcp.NewTool("stats",
		mcp.WithDescription("Retrieves usage statistics for the InkPilot tools"),
	)

	mcpServer.AddTool(statsTool, WrapHandler("stats", HandleGetStats))

	log.Printf("[Stats] Registered stats tool")

	return nil
}

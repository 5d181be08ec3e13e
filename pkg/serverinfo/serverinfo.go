// Package serverinfo serves the server://info resource: build, runtime and
// editor state of the running server.
package serverinfo

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Info describes the running server.
type Info struct {
	Name      string
	Version   string
	Annotator string
	// Sessions reports the number of open editor sessions
	Sessions func() int
}

// startTime is used to calculate uptime
var startTime = time.Now()

// Snapshot collects the current server information.
func (i Info) Snapshot() map[string]interface{} {
	info := map[string]interface{}{
		"name":           i.Name,
		"version":        i.Version,
		"annotator":      i.Annotator,
		"timestamp":      time.Now().Format(time.RFC3339),
		"go_version":     runtime.Version(),
		"os":             runtime.GOOS,
		"architecture":   runtime.GOARCH,
		"cpu_cores":      runtime.NumCPU(),
		"goroutines":     runtime.NumGoroutine(),
		"memory_stats":   getMemoryStats(),
		"uptime_seconds": getUptime(),
	}
	if i.Sessions != nil {
		info["open_sessions"] = i.Sessions()
	}
	return info
}

// Format renders a snapshot one key per line, sorted by key.
func Format(info map[string]interface{}) string {
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	infoStr := "Server Information:\n\n"
	for _, k := range keys {
		infoStr += fmt.Sprintf("%s: %v\n", k, info[k])
	}
	return infoStr
}

// HandleServerInfo is the handler function for the server info resource
func (i Info) HandleServerInfo(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/plain",
			Text:     Format(i.Snapshot()),
		},
	}, nil
}

// RegisterServerInfo registers the server info resource with the MCP server
func RegisterServerInfo(mcpServer *server.MCPServer, info Info) {
	mcpServer.AddResource(
		mcp.NewResource(
			"server://info",
			"Server Information",
			mcp.WithMIMEType("text/plain"),
		),
		info.HandleServerInfo,
	)
}

// getMemoryStats returns memory statistics
func getMemoryStats() map[string]interface{} {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return map[string]interface{}{
		"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
		"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
		"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
		"num_gc":         memStats.NumGC,
	}
}

// getUptime returns the server uptime in seconds
func getUptime() float64 {
	return time.Since(startTime).Seconds()
}

package stats

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsManagerPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "stats.json")

	m, err := NewStatsManager(path)
	require.NoError(t, err)
	require.NoError(t, m.RecordToolUsage("editor", 20*time.Millisecond, 10, 100, false))
	require.NoError(t, m.RecordToolUsage("editor", 40*time.Millisecond, 10, 50, true))

	session := m.GetSessionStats().Tools["editor"]
	require.NotNil(t, session)
	assert.Equal(t, 2, session.CallCount)
	assert.Equal(t, 1, session.ErrorCount)
	assert.Equal(t, 30*time.Millisecond, session.AverageExecutionTime)
	assert.Equal(t, 150, session.OutputBytes)

	reloaded, err := NewStatsManager(path)
	require.NoError(t, err)
	persisted := reloaded.GetPersistentStats().Tools["editor"]
	require.NotNil(t, persisted)
	assert.Equal(t, 2, persisted.CallCount)
	assert.Empty(t, reloaded.GetSessionStats().Tools)

	m.ResetSessionStats()
	assert.Empty(t, m.GetSessionStats().Tools)
	assert.Len(t, m.GetPersistentStats().Tools, 1)
}

func TestFormatStatsSorted(t *testing.T) {
	m, err := NewStatsManager(filepath.Join(t.TempDir(), "stats.json"))
	require.NoError(t, err)
	require.NoError(t, m.RecordToolUsage("locate_span", time.Millisecond, 1, 1, false))
	require.NoError(t, m.RecordToolUsage("analyze", time.Millisecond, 1, 1, false))

	out := FormatStats(m.GetSessionStats(), m.GetPersistentStats())
	assert.Contains(t, out, "Since Server Start:")
	assert.Less(t, strings.Index(out, "analyze"), strings.Index(out, "locate_span"))
}

func TestWrapHandler(t *testing.T) {
	require.NoError(t, InitStatsManager(t.TempDir()))
	defer func() { globalStatsManager = nil }()

	ok := WrapHandler("echo", func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return &mcp.CallToolResult{Content: []mcp.Content{mcp.TextContent{Type: "text", Text: "hello"}}}, nil
	})
	failing := WrapHandler("echo", func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, errors.New("boom")
	})

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"text": "abc"}

	res, err := ok(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)

	_, err = failing(context.Background(), req)
	assert.EqualError(t, err, "boom")

	tool := GetStatsManager().GetSessionStats().Tools["echo"]
	require.NotNil(t, tool)
	assert.Equal(t, 2, tool.CallCount)
	assert.Equal(t, 1, tool.ErrorCount)
	assert.Equal(t, 2*len("textabc"), tool.InputBytes)
	assert.Equal(t, len("hello"), tool.OutputBytes)

	out, err := HandleGetStats(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	text := out.Content[0].(mcp.TextContent).Text
	assert.Contains(t, text, "echo")
}

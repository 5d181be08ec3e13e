package main

import (
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"

	"github.com/Code-Monger/InkPilot/cmd/mcp-client/tools"
)

func TestPlanRuns(t *testing.T) {
	offered := []mcp.Tool{{Name: "editor"}, {Name: "analyze"}, {Name: "stats"}}

	tests := []struct {
		name      string
		selection string
		run       []string
		missing   int
	}{
		{name: "single offered tool", selection: "editor", run: []string{"editor"}},
		{name: "single missing tool", selection: "project", missing: 1},
		{name: "all keeps workflow order", selection: "all", run: []string{"editor", "analyze", "stats"}, missing: len(tools.Names) - 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, missing := planRuns(tt.selection, offered)
			assert.Equal(t, tt.run, run)
			assert.Len(t, missing, tt.missing)
		})
	}
}

func TestFormatSummary(t *testing.T) {
	out := formatSummary([]runResult{
		{tool: "editor", elapsed: 12 * time.Millisecond},
		{tool: "analyze", err: errors.New("quota"), elapsed: time.Millisecond},
		{tool: "project", skipped: true},
	})

	assert.Contains(t, out, "  ok   editor (12ms)")
	assert.Contains(t, out, "  FAIL analyze (1ms): quota")
	assert.Contains(t, out, "  SKIP project (not offered by server)")
	assert.Contains(t, out, "1 passed, 1 failed, 1 skipped")
}

package serverinfo

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleServerInfo(t *testing.T) {
	info := Info{
		Name:      "InkPilot",
		Version:   "1.2.3",
		Annotator: "spellcheck",
		Sessions:  func() int { return 4 },
	}

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "server://info"
	contents, err := info.HandleServerInfo(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "server://info", text.URI)
	assert.Contains(t, text.Text, "annotator: spellcheck\n")
	assert.Contains(t, text.Text, "open_sessions: 4\n")
	assert.Contains(t, text.Text, "version: 1.2.3\n")
}

func TestFormatIsSorted(t *testing.T) {
	out := Format(map[string]interface{}{"b": 2, "a": 1, "c": 3})
	assert.Equal(t, "Server Information:\n\na: 1\nb: 2\nc: 3\n", out)

	snapshot := Info{}.Snapshot()
	_, hasSessions := snapshot["open_sessions"]
	assert.False(t, hasSessions)
	assert.True(t, strings.HasPrefix(Format(snapshot), "Server Information:"))
}

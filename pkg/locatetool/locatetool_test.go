package locatetool

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Code-Monger/InkPilot/pkg/finding"
	"github.com/Code-Monger/InkPilot/pkg/spanlocate"
)

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (string, error) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	if err != nil {
		return "", err
	}
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, nil
}

func TestLocateSpan(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		claimed string
		context string
		want    Match
		found   bool
	}{
		{
			name:    "exact",
			text:    "He dont like it.",
			claimed: "dont",
			want: Match{
				Bytes: spanlocate.Range{Start: 3, End: 7},
				Runes: spanlocate.Range{Start: 3, End: 7},
				UTF16: spanlocate.Range{Start: 3, End: 7},
				Text:  "dont",
			},
			found: true,
		},
		{
			name:    "normalized",
			text:    "The  quick,  brown fox.",
			claimed: "quick brown",
			want: Match{
				Bytes: spanlocate.Range{Start: 5, End: 18},
				Runes: spanlocate.Range{Start: 5, End: 18},
				UTF16: spanlocate.Range{Start: 5, End: 18},
				Text:  "quick,  brown",
			},
			found: true,
		},
		{
			name:    "multibyte offsets",
			text:    "😀 café teh end",
			claimed: "teh",
			want: Match{
				Bytes: spanlocate.Range{Start: 11, End: 14},
				Runes: spanlocate.Range{Start: 7, End: 10},
				UTF16: spanlocate.Range{Start: 8, End: 11},
				Text:  "teh",
			},
			found: true,
		},
		{
			name:    "context picks the second occurrence",
			text:    "I saw it. Then I saw it again.",
			claimed: "saw it",
			context: "I saw it again",
			want: Match{
				Bytes: spanlocate.Range{Start: 17, End: 23},
				Runes: spanlocate.Range{Start: 17, End: 23},
				UTF16: spanlocate.Range{Start: 17, End: 23},
				Text:  "saw it",
			},
			found: true,
		},
		{name: "absent", text: "Hello world.", claimed: "purple elephant"},
		{name: "empty claim", text: "Hello world.", claimed: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := LocateSpan(tt.text, tt.claimed, tt.context)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestHandleLocateSpan(t *testing.T) {
	out, err := callTool(t, HandleLocateSpan, map[string]interface{}{
		"text":         "He dont like it.",
		"claimed_text": "dont",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Bytes: [3, 7)")
	assert.Contains(t, out, "UTF-16: [3, 7)")

	out, err = callTool(t, HandleLocateSpan, map[string]interface{}{
		"text":         "He dont like it.",
		"claimed_text": "purple elephant",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "No match")

	_, err = callTool(t, HandleLocateSpan, map[string]interface{}{"text": "x"})
	assert.Error(t, err)
}

func TestParseFindings(t *testing.T) {
	input := `[
		{"id": "error_1", "originalText": "dont", "message": "Missing apostrophe", "suggestions": ["doesn't"], "type": "grammar"},
		{"id": "style_1", "originalText": "very very good", "message": "Repetition", "suggestion": "excellent", "type": "conciseness"},
		{"id": "f3", "kind": "style", "category": "tone", "claimed_text": "like", "replacements": ["enjoy"]},
		{"id": "error_2", "originalText": "  ", "message": "blank"}
	]`

	findings, rejected, err := ParseFindings(input, "")
	require.NoError(t, err)
	require.Len(t, findings, 3)

	assert.Equal(t, finding.KindGrammar, findings[0].Kind)
	assert.Equal(t, []string{"doesn't"}, findings[0].Replacements)

	assert.Equal(t, finding.KindStyle, findings[1].Kind)
	assert.Equal(t, finding.CategoryConciseness, findings[1].Category)
	assert.Equal(t, []string{"excellent"}, findings[1].Replacements)

	assert.Equal(t, "f3", findings[2].ID)
	assert.Equal(t, finding.CategoryTone, findings[2].Category)
	assert.Equal(t, "like", findings[2].ClaimedText)

	require.Len(t, rejected, 1)
	assert.Equal(t, 3, rejected[0].Index)
}

func TestParseFindingsFallbackKind(t *testing.T) {
	findings, _, err := ParseFindings([]interface{}{
		map[string]interface{}{"originalText": "very good", "type": "bogus"},
	}, finding.KindStyle)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, finding.KindStyle, findings[0].Kind)
	assert.Equal(t, finding.CategoryStyle, findings[0].Category)
}

func TestParseFindingsErrors(t *testing.T) {
	_, _, err := ParseFindings(42.0, "")
	assert.Error(t, err)

	_, _, err = ParseFindings("not json", "")
	assert.Error(t, err)

	_, _, err = ParseFindings(`[{"kind": "tone", "claimed_text": "x"}]`, "")
	assert.Error(t, err)
}

func TestHandleHighlights(t *testing.T) {
	handler := HandleHighlights(finding.ResolveOptions{UseContext: true})

	out, err := callTool(t, handler, map[string]interface{}{
		"text": "The quick brown fox jumps.",
		"findings": []interface{}{
			map[string]interface{}{"id": "g1", "originalText": "quick brown", "suggestions": []interface{}{"fast brown"}},
			map[string]interface{}{"id": "s1", "kind": "style", "claimed_text": "brown fox jumps", "replacements": []interface{}{"fox leaps"}},
			map[string]interface{}{"id": "g2", "originalText": "purple elephant"},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Located 2 of 3 findings (1 not found, 0 rejected), 1 highlighted")
	assert.Contains(t, out, `1. [4, 15) grammar/grammar g1: "quick brown" -> fast brown`)
	assert.Contains(t, out, "The [quick brown]{grammar/grammar} fox jumps.")
	assert.Contains(t, out, `<mark class="grammar grammar" data-finding="g1">quick brown</mark>`)

	out, err = callTool(t, handler, map[string]interface{}{
		"text":     "Nothing to see.",
		"findings": "[]",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Located 0 of 0 findings")
	assert.Contains(t, out, "Plain:\nNothing to see.")

	_, err = callTool(t, handler, map[string]interface{}{
		"text":     "x",
		"findings": "[]",
		"kind":     "tone",
	})
	assert.Error(t, err)
}

func TestLocateSpanDecomposedText(t *testing.T) {
	// "café" spelled with a combining acute accent
	text := "The cafe\u0301 was closed."

	m, ok := LocateSpan(text, "cafe\u0301", "")
	require.True(t, ok)
	assert.Equal(t, spanlocate.Range{Start: 4, End: 9}, m.Bytes)
	assert.Equal(t, spanlocate.Range{Start: 4, End: 8}, m.Runes)
	assert.Equal(t, "caf\u00e9", m.Text)

	m, ok = LocateSpan(text, "caf\u00e9", "")
	require.True(t, ok)
	assert.Equal(t, spanlocate.Range{Start: 4, End: 9}, m.Bytes)
}

func TestHandleHighlightsDecomposedText(t *testing.T) {
	handler := HandleHighlights(finding.ResolveOptions{UseContext: true})

	out, err := callTool(t, handler, map[string]interface{}{
		"text": "The cafe\u0301 was closed.",
		"findings": []interface{}{
			map[string]interface{}{"id": "g1", "originalText": "cafe\u0301", "suggestions": []interface{}{"diner"}},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Located 1 of 1 findings (0 not found, 0 rejected), 1 highlighted")
	assert.Contains(t, out, "1. [4, 9) grammar/grammar g1: \"caf\u00e9\" -> diner")
}

func TestParseFindingsSharedIDs(t *testing.T) {
	findings, _, err := ParseFindings(`[
		{"id": "1", "originalText": "quick", "suggestions": ["fast"], "type": "grammar"},
		{"id": "1", "originalText": "very fast", "suggestion": "speedy", "type": "conciseness"}
	]`, "")
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, "1", findings[0].ID)
	assert.Equal(t, "style:1", findings[1].ID)

	handler := HandleHighlights(finding.ResolveOptions{})
	out, err := callTool(t, handler, map[string]interface{}{
		"text": "The quick brown fox is very fast.",
		"findings": `[
			{"id": "1", "originalText": "quick", "suggestions": ["fast"], "type": "grammar"},
			{"id": "1", "originalText": "very fast", "suggestion": "speedy", "type": "conciseness"}
		]`,
	})
	require.NoError(t, err)
	assert.Contains(t, out, `1. [4, 9) grammar/grammar 1: "quick" -> fast`)
	assert.Contains(t, out, `2. [23, 32) style/conciseness style:1: "very fast" -> speedy`)
}

package spellcheck

import (
	"context"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Code-Monger/InkPilot/pkg/annotate"
	"github.com/Code-Monger/InkPilot/pkg/finding"
	"github.com/Code-Monger/InkPilot/pkg/spanlocate"
)

var testChecker = sync.OnceValue(func() *Checker {
	return NewChecker("zorblax")
})

func TestEmbeddedDictionary(t *testing.T) {
	words := loadEmbeddedDictionary()
	assert.Greater(t, len(words), 5000)
	assert.Contains(t, words, "the")
}

func TestKnown(t *testing.T) {
	c := testChecker()

	assert.True(t, c.Known("the"))
	assert.True(t, c.Known("The"))
	assert.True(t, c.Known("writer's"))
	assert.True(t, c.Known("don’t"))
	assert.True(t, c.Known("zorblax"))
	assert.False(t, c.Known("teh"))
}

func TestSuggest(t *testing.T) {
	c := testChecker()

	assert.Contains(t, c.Suggest("zorblex"), "zorblax")
	assert.Contains(t, c.Suggest("Zorblex"), "Zorblax")
	assert.LessOrEqual(t, len(c.Suggest("teh")), maxSuggestions)
}

func TestCheck(t *testing.T) {
	c := testChecker()
	text := "He dont like teh cat."

	results := c.Check(text)
	require.Len(t, results, 2)

	assert.Equal(t, "dont", results[0].Word)
	assert.Equal(t, spanlocate.Range{Start: 3, End: 7}, results[0].Range)
	assert.Equal(t, "He dont like teh", results[0].Context)

	assert.Equal(t, "teh", results[1].Word)
	assert.Equal(t, spanlocate.Range{Start: 13, End: 16}, results[1].Range)
	assert.Equal(t, "dont like teh cat.", results[1].Context)
	assert.NotEmpty(t, results[1].Suggestions)

	for _, r := range results {
		assert.Equal(t, r.Word, text[r.Range.Start:r.Range.End])
	}
}

func TestCheckSkips(t *testing.T) {
	c := testChecker()

	tests := []struct {
		name string
		text string
	}{
		{name: "names inside a sentence", text: "We met Zorgon in Paris."},
		{name: "acronyms and digits", text: "The NASA team shipped the 3rd version of x86 chips."},
		{name: "mixed case", text: "She bought an iPhone."},
		{name: "short words", text: "Xq zz."},
		{name: "possessive", text: "the writer's notes"},
		{name: "curly apostrophe", text: "They don’t know."},
		{name: "non latin", text: "The word café and наука."},
		{name: "empty", text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, c.Check(tt.text))
		})
	}
}

func TestCheckSentenceStart(t *testing.T) {
	c := testChecker()

	results := c.Check("It works. Qwertyx is next.")
	require.Len(t, results, 1)
	assert.Equal(t, "Qwertyx", results[0].Word)
}

func TestCheckMultibyteOffsets(t *testing.T) {
	c := testChecker()
	text := "Naïve “quotes” around teh word."

	results := c.Check(text)
	require.Len(t, results, 1)
	assert.Equal(t, "teh", text[results[0].Range.Start:results[0].Range.End])
}

func TestAnnotate(t *testing.T) {
	c := testChecker()
	text := "He dont like teh cat."

	result, err := c.Annotate(context.Background(), finding.KindGrammar, text)
	require.NoError(t, err)
	assert.NotEmpty(t, result.RequestID)
	assert.Empty(t, result.Rejected)
	require.Len(t, result.Findings, 2)

	f := result.Findings[1]
	assert.Equal(t, finding.KindGrammar, f.Kind)
	assert.Equal(t, finding.CategorySpelling, f.Category)
	assert.Equal(t, "teh", f.ClaimedText)
	assert.False(t, f.Resolved())

	resolved, dropped := finding.Resolve(text, result.Findings, finding.ResolveOptions{UseContext: true})
	assert.Equal(t, 0, dropped)
	require.Len(t, resolved, 2)
	assert.Equal(t, spanlocate.Range{Start: 13, End: 16}, *resolved[1].Range)
}

func TestAnnotateStyleIsEmpty(t *testing.T) {
	result, err := testChecker().Annotate(context.Background(), finding.KindStyle, "He dont like teh cat.")
	require.NoError(t, err)
	assert.Empty(t, result.Findings)
}

func TestAnnotateErrors(t *testing.T) {
	c := testChecker()

	_, err := c.Annotate(context.Background(), finding.Kind("tone"), "text")
	assert.True(t, annotate.IsFatal(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Annotate(ctx, finding.KindGrammar, "text")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandleSpellCheck(t *testing.T) {
	c := testChecker()

	req := mcp.CallToolRequest{}
	req.Params.Name = "spellcheck"
	req.Params.Arguments = map[string]interface{}{
		"text":              "He dont like teh cat.",
		"custom_dictionary": []interface{}{"teh"},
	}

	res, err := c.HandleSpellCheck(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Found 1 spelling issues")
	assert.Contains(t, text.Text, "Word: dont")
	assert.Contains(t, text.Text, "Range: [3, 7)")

	req.Params.Arguments = map[string]interface{}{"text": "All good here."}
	res, err = c.HandleSpellCheck(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "No spelling issues found.", res.Content[0].(mcp.TextContent).Text)

	req.Params.Arguments = map[string]interface{}{}
	_, err = c.HandleSpellCheck(context.Background(), req)
	assert.Error(t, err)
}

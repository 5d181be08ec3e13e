package finding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Code-Monger/InkPilot/pkg/spanlocate"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Grammar ")
	require.NoError(t, err)
	assert.Equal(t, KindGrammar, k)

	k, err = ParseKind("style")
	require.NoError(t, err)
	assert.Equal(t, KindStyle, k)

	_, err = ParseKind("tone")
	assert.Error(t, err)
}

func TestKindPriority(t *testing.T) {
	assert.Less(t, KindGrammar.Priority(), KindStyle.Priority())
	assert.Less(t, KindStyle.Priority(), Kind("other").Priority())
}

func TestFromGrammar(t *testing.T) {
	errs := []GrammarError{
		{ID: "error_1", OriginalText: "dont", Message: "Missing apostrophe", Suggestions: []string{"don't", ""}, Type: "spelling", Context: "He dont like"},
		{ID: "error_2", OriginalText: "   ", Message: "blank", Type: "grammar"},
		{ID: "error_1", OriginalText: "it", Message: "dup id", Type: "Punctuation"},
		{OriginalText: "like", Message: "no id", Type: "conciseness"},
	}

	findings, rejected := FromGrammar(errs)
	require.Len(t, findings, 3)
	require.Len(t, rejected, 1)
	assert.Equal(t, 1, rejected[0].Index)
	assert.Equal(t, "empty claimed text", rejected[0].Reason)

	first := findings[0]
	assert.Equal(t, "error_1", first.ID)
	assert.Equal(t, KindGrammar, first.Kind)
	assert.Equal(t, CategorySpelling, first.Category)
	assert.Equal(t, []string{"don't"}, first.Replacements)
	assert.Equal(t, "He dont like", first.Context)
	assert.False(t, first.Resolved())

	dup := findings[1]
	assert.NotEqual(t, "error_1", dup.ID)
	assert.True(t, strings.HasPrefix(dup.ID, "grammar_"))
	assert.Equal(t, CategoryPunctuation, dup.Category)

	noID := findings[2]
	assert.NotEmpty(t, noID.ID)
	assert.Equal(t, CategoryGrammar, noID.Category, "style category is not valid for grammar findings")
}

func TestFromStyle(t *testing.T) {
	sugs := []StyleSuggestion{
		{ID: "style_1", OriginalText: "very very good", Message: "Repetition", Suggestion: "excellent", Type: "conciseness"},
		{ID: "style_2", OriginalText: "In my opinion", Message: "Filler", Suggestion: "", Type: "unknown"},
		{ID: "style_3", OriginalText: "", Message: "nothing"},
	}

	findings, rejected := FromStyle(sugs)
	require.Len(t, findings, 2)
	require.Len(t, rejected, 1)

	assert.Equal(t, KindStyle, findings[0].Kind)
	assert.Equal(t, CategoryConciseness, findings[0].Category)
	assert.Equal(t, []string{"excellent"}, findings[0].Replacements)
	assert.True(t, findings[0].HasReplacement("excellent"))

	assert.Equal(t, CategoryStyle, findings[1].Category)
	assert.Empty(t, findings[1].Replacements)
}

func TestFromGrammarNFC(t *testing.T) {
	decomposed := "cafe\u0301"
	findings, _ := FromGrammar([]GrammarError{{ID: "e", OriginalText: decomposed, Type: "spelling"}})
	require.Len(t, findings, 1)
	assert.Equal(t, "caf\u00e9", findings[0].ClaimedText)
}

func TestResolve(t *testing.T) {
	text := "I has a cat. You has a dog."
	findings := []Finding{
		{ID: "a", Kind: KindGrammar, ClaimedText: "has", Context: "You has a dog"},
		{ID: "b", Kind: KindGrammar, ClaimedText: "purple elephant"},
		{ID: "c", Kind: KindStyle, ClaimedText: "i has a cat"},
		{ID: "d", Kind: KindGrammar, ClaimedText: ""},
	}

	t.Run("with context", func(t *testing.T) {
		resolved, dropped := Resolve(text, findings, ResolveOptions{UseContext: true})
		assert.Equal(t, 2, dropped)
		require.Len(t, resolved, 2)
		assert.Equal(t, "a", resolved[0].ID)
		assert.Equal(t, spanlocate.Range{Start: 17, End: 20}, *resolved[0].Range)
		assert.Equal(t, "c", resolved[1].ID)
		assert.Equal(t, spanlocate.Range{Start: 0, End: 11}, *resolved[1].Range)
	})

	t.Run("first occurrence", func(t *testing.T) {
		resolved, dropped := Resolve(text, findings, ResolveOptions{})
		assert.Equal(t, 2, dropped)
		require.Len(t, resolved, 2)
		assert.Equal(t, spanlocate.Range{Start: 2, End: 5}, *resolved[0].Range)
	})

	t.Run("input is not mutated", func(t *testing.T) {
		_, _ = Resolve(text, findings, ResolveOptions{})
		for _, f := range findings {
			assert.False(t, f.Resolved())
		}
	})

	t.Run("stale ranges are recomputed", func(t *testing.T) {
		stale := spanlocate.Range{Start: 100, End: 120}
		resolved, _ := Resolve(text, []Finding{{ID: "x", ClaimedText: "dog", Range: &stale}}, ResolveOptions{})
		require.Len(t, resolved, 1)
		assert.Equal(t, spanlocate.Range{Start: 23, End: 26}, *resolved[0].Range)
	})

	t.Run("empty document", func(t *testing.T) {
		resolved, dropped := Resolve("", findings, ResolveOptions{})
		assert.Empty(t, resolved)
		assert.Equal(t, len(findings), dropped)
	})
}

func TestActionable(t *testing.T) {
	r := spanlocate.Range{Start: 0, End: 1}
	assert.False(t, Finding{Replacements: []string{"x"}}.Actionable())
	assert.False(t, Finding{Range: &r}.Actionable())
	assert.True(t, Finding{Range: &r, Replacements: []string{"x"}}.Actionable())
}

func TestUniqueIDs(t *testing.T) {
	grammar := []Finding{{ID: "1", Kind: KindGrammar}, {ID: "2", Kind: KindGrammar}, {ID: "style:1", Kind: KindGrammar}}
	style := []Finding{{ID: "1", Kind: KindStyle}, {ID: "3", Kind: KindStyle}, {ID: "3", Kind: KindStyle}}

	got := UniqueIDs(KindStyle, style, grammar)
	require.Len(t, got, 3)
	assert.Equal(t, "style:1_2", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
	assert.Equal(t, "style:3", got[2].ID)

	// the input is left alone
	assert.Equal(t, "1", style[0].ID)

	assert.Empty(t, UniqueIDs(KindGrammar, nil, style))
	assert.Equal(t, grammar, UniqueIDs(KindGrammar, grammar, nil))
}

func TestQualifiedID(t *testing.T) {
	assert.Equal(t, "grammar:error_1", QualifiedID(KindGrammar, "error_1"))
}

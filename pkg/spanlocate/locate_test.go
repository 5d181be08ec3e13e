package spanlocate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "trim and collapse", in: "  Hello,   World!  ", want: "hello world"},
		{name: "punctuation between spaces", in: "a , b", want: "a b"},
		{name: "punctuation inside word", in: "don't", want: "dont"},
		{name: "only punctuation", in: "--- !!! ...", want: ""},
		{name: "mixed whitespace", in: "tab\tand\nnew\r\nline", want: "tab and new line"},
		{name: "underscore dropped", in: "snake_case", want: "snakecase"},
		{name: "digits kept", in: "Room 101!", want: "room 101"},
		{name: "accented letters", in: "ÀÉÎ Straße", want: "àéî straße"},
		{name: "cyrillic", in: "Привет, МИР", want: "привет мир"},
		{name: "invalid utf8 dropped", in: "ab\xffcd", want: "abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
			assert.Equal(t, tt.want, NewProjection(tt.in).Normalized())
		})
	}
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name     string
		haystack string
		needle   string
		want     Range
		found    bool
	}{
		{
			name:     "exact match",
			haystack: "The quick brown fox.",
			needle:   "quick brown",
			want:     Range{Start: 4, End: 15},
			found:    true,
		},
		{
			name:     "extra space and stray comma",
			haystack: "He dont like it.",
			needle:   "He  dont, like it",
			want:     Range{Start: 0, End: 15},
			found:    true,
		},
		{
			name:     "absent phrase",
			haystack: "He dont like it.",
			needle:   "purple elephant",
			found:    false,
		},
		{
			name:     "case and punctuation",
			haystack: "Hello, World! How are you?",
			needle:   "hello world",
			want:     Range{Start: 0, End: 12},
			found:    true,
		},
		{
			name:     "apostrophe stripped by annotator",
			haystack: "I don't know.",
			needle:   "dont know",
			want:     Range{Start: 2, End: 12},
			found:    true,
		},
		{
			name:     "multi-byte runes",
			haystack: "Café  au lait!",
			needle:   "café au  lait",
			want:     Range{Start: 0, End: 14},
			found:    true,
		},
		{
			name:     "newline and tab collapse",
			haystack: "one\n\ttwo three",
			needle:   "one two",
			want:     Range{Start: 0, End: 8},
			found:    true,
		},
		{
			name:     "first occurrence wins exact",
			haystack: "the cat and the cat",
			needle:   "the cat",
			want:     Range{Start: 0, End: 7},
			found:    true,
		},
		{
			name:     "first occurrence wins normalized",
			haystack: "the cat and the cat",
			needle:   "THE CAT",
			want:     Range{Start: 0, End: 7},
			found:    true,
		},
		{
			name:     "punctuation only exact",
			haystack: "Wow!!!",
			needle:   "!!!",
			want:     Range{Start: 3, End: 6},
			found:    true,
		},
		{
			name:     "punctuation only normalizes to nothing",
			haystack: "Wow!",
			needle:   "?!",
			found:    false,
		},
		{
			name:     "invalid utf8 in haystack",
			haystack: "ab\xffcd",
			needle:   "abcd",
			want:     Range{Start: 0, End: 5},
			found:    true,
		},
		{
			name:     "empty needle",
			haystack: "anything at all",
			needle:   "",
			found:    false,
		},
		{
			name:     "empty haystack",
			haystack: "",
			needle:   "word",
			found:    false,
		},
		{
			name:     "both empty",
			haystack: "",
			needle:   "",
			found:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Locate(tt.haystack, tt.needle)
			require.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}

			// the projection path must agree with the one-off path
			pgot, pok := NewProjection(tt.haystack).Locate(tt.needle)
			assert.Equal(t, ok, pok)
			assert.Equal(t, got, pgot)
		})
	}
}

func TestLocateScenarioBounds(t *testing.T) {
	haystack := "He dont like it."
	r, ok := Locate(haystack, "He  dont, like it")
	require.True(t, ok)
	assert.Equal(t, "He dont like it", haystack[r.Start:r.End])
}

func TestLocateDeterministic(t *testing.T) {
	haystack := "It's a truth universally acknowledged, that a single man..."
	needle := "its a truth universally acknowledged that"

	first, ok1 := Locate(haystack, needle)
	second, ok2 := Locate(haystack, needle)
	require.True(t, ok1)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}

func TestLocatePerturbedSubstrings(t *testing.T) {
	haystack := "Yesterday, we  walked to the old mill; the river was high.\nNobody's boat was out — not even Tom's!"
	words := strings.Fields(haystack)

	perturb := []struct {
		name string
		fn   func(string) string
	}{
		{name: "upper", fn: strings.ToUpper},
		{name: "strip punctuation", fn: func(s string) string {
			return strings.Map(func(r rune) rune {
				if strings.ContainsRune(",;.!'—", r) {
					return -1
				}
				return r
			}, s)
		}},
		{name: "double spaces", fn: func(s string) string { return strings.ReplaceAll(s, " ", "  ") }},
		{name: "trailing comma", fn: func(s string) string { return s + "," }},
	}

	for i := 0; i < len(words); i++ {
		for j := i + 1; j <= len(words) && j <= i+4; j++ {
			base := strings.Join(words[i:j], " ")
			for _, p := range perturb {
				needle := p.fn(base)
				want := Normalize(needle)
				if want == "" {
					continue
				}
				r, ok := Locate(haystack, needle)
				require.Truef(t, ok, "%s: %q not located", p.name, needle)
				require.Truef(t, r.Within(len(haystack)), "%s: range %v out of bounds", p.name, r)
				assert.Equalf(t, want, Normalize(haystack[r.Start:r.End]), "%s: %q", p.name, needle)
			}
		}
	}
}

func TestLocateInContext(t *testing.T) {
	haystack := "I has a cat. You has a dog."
	p := NewProjection(haystack)

	t.Run("context picks later occurrence", func(t *testing.T) {
		r, ok := p.LocateInContext("has", "You has a dog")
		require.True(t, ok)
		assert.Equal(t, Range{Start: 17, End: 20}, r)
	})

	t.Run("normalized context", func(t *testing.T) {
		r, ok := p.LocateInContext("has", "you has a dog")
		require.True(t, ok)
		assert.Equal(t, Range{Start: 17, End: 20}, r)
	})

	t.Run("missing context falls back to first occurrence", func(t *testing.T) {
		r, ok := p.LocateInContext("has", "They has a bird")
		require.True(t, ok)
		assert.Equal(t, Range{Start: 2, End: 5}, r)
	})

	t.Run("empty context", func(t *testing.T) {
		r, ok := p.LocateInContext("has", "")
		require.True(t, ok)
		assert.Equal(t, Range{Start: 2, End: 5}, r)
	})

	t.Run("empty needle", func(t *testing.T) {
		_, ok := p.LocateInContext("", "You has a dog")
		assert.False(t, ok)
	})
}

func TestRange(t *testing.T) {
	r := Range{Start: 4, End: 15}
	assert.Equal(t, 11, r.Len())
	assert.False(t, r.Empty())
	assert.True(t, r.Within(15))
	assert.False(t, r.Within(14))
	assert.False(t, Range{Start: 5, End: 4}.Within(10))
	assert.Equal(t, Range{Start: 6, End: 17}, r.Shift(2))
	assert.Equal(t, "[4, 15)", r.String())
}

func TestOffsetTable(t *testing.T) {
	text := "a😀b"
	table := NewOffsetTable(text)

	assert.Equal(t, 0, table.Runes(0))
	assert.Equal(t, 1, table.Runes(1))
	assert.Equal(t, 1, table.Runes(3), "mid-rune byte maps to its rune")
	assert.Equal(t, 2, table.Runes(5))
	assert.Equal(t, 3, table.Runes(6))

	assert.Equal(t, 3, table.UTF16(5))
	assert.Equal(t, 4, table.UTF16(6))
	assert.Equal(t, 4, table.UTF16(100), "clamped to the end")

	assert.Equal(t, Range{Start: 1, End: 2}, table.RuneRange(Range{Start: 1, End: 5}))
	assert.Equal(t, Range{Start: 1, End: 3}, table.UTF16Range(Range{Start: 1, End: 5}))
}

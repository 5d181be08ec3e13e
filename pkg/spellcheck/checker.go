// Package spellcheck is the offline annotator. It flags words missing
// from an embedded English dictionary and suggests corrections with a
// fuzzy edit-distance model.
package spellcheck

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sajari/fuzzy"

	"github.com/Code-Monger/InkPilot/pkg/annotate"
	"github.com/Code-Monger/InkPilot/pkg/finding"
	"github.com/Code-Monger/InkPilot/pkg/spanlocate"
)

const (
	// minWordLength is the shortest word, in runes, that gets checked.
	minWordLength = 3
	// maxSuggestions caps the corrections offered per word.
	maxSuggestions = 3
	// contextWords is how many neighbouring words go into a context.
	contextWords = 2
)

// Misspelling is one word the dictionary does not know.
type Misspelling struct {
	Word        string           `json:"word"`
	Range       spanlocate.Range `json:"range"`
	Suggestions []string         `json:"suggestions,omitempty"`
	Context     string           `json:"context"`
}

// Checker holds the dictionary and the correction model. It is safe for
// concurrent use once built.
type Checker struct {
	words map[string]bool
	model *fuzzy.Model
}

var _ annotate.Annotator = (*Checker)(nil)

// NewChecker builds a checker from the embedded dictionary plus extra
// accepted words.
func NewChecker(extra ...string) *Checker {
	model := fuzzy.NewModel()
	model.SetDepth(2)     // Maximum edit distance
	model.SetThreshold(1) // Minimum frequency threshold
	model.SetUseAutocomplete(false)

	c := &Checker{
		words: make(map[string]bool),
		model: model,
	}

	words := append(loadEmbeddedDictionary(), extra...)
	for _, word := range words {
		word = normalizeWord(word)
		if word == "" || c.words[word] {
			continue
		}
		c.words[word] = true
		model.TrainWord(word)
	}

	log.Printf("[SpellCheck] Trained fuzzy model with %d words", len(c.words))
	return c
}

// Name identifies the annotator in logs and metrics.
func (c *Checker) Name() string {
	return "spellcheck"
}

// Known reports whether word is in the dictionary. Case and a trailing
// possessive are ignored.
func (c *Checker) Known(word string) bool {
	word = normalizeWord(word)
	if c.words[word] {
		return true
	}
	if base, ok := strings.CutSuffix(word, "'s"); ok && c.words[base] {
		return true
	}
	return false
}

// Suggest returns up to three corrections for word, matching its
// capitalization.
func (c *Checker) Suggest(word string) []string {
	suggestions := c.model.SpellCheckSuggestions(normalizeWord(word), maxSuggestions)
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	if startsUpper(word) {
		for i, s := range suggestions {
			suggestions[i] = capitalize(s)
		}
	}
	return suggestions
}

// Check returns the misspelled words of text in order of appearance.
// Ranges are byte offsets into text.
func (c *Checker) Check(text string) []Misspelling {
	var results []Misspelling
	sentenceStart := true

	for _, tok := range tokenize(text) {
		first := sentenceStart
		sentenceStart = tok.endsSentence

		if !c.shouldCheck(tok.text, first) || c.Known(tok.text) {
			continue
		}
		results = append(results, Misspelling{
			Word:        tok.text,
			Range:       tok.rng,
			Suggestions: c.Suggest(tok.text),
			Context:     surrounding(text, tok.rng, contextWords),
		})
	}
	return results
}

// shouldCheck filters out tokens the dictionary cannot judge: short
// words, anything with digits, acronyms, mixed-case names, capitalized
// words inside a sentence, and words outside the Latin alphabet.
func (c *Checker) shouldCheck(word string, sentenceStart bool) bool {
	if utf8.RuneCountInString(word) < minWordLength {
		return false
	}

	upper := 0
	for i, r := range word {
		switch {
		case unicode.IsDigit(r):
			return false
		case r > unicode.MaxASCII && r != '’':
			return false
		case unicode.IsUpper(r):
			if i > 0 {
				upper++
			}
		}
	}
	if upper > 0 {
		return false
	}
	if startsUpper(word) && !sentenceStart {
		return false
	}
	return true
}

// Annotate implements annotate.Annotator. Grammar passes report spelling
// findings; style passes report nothing.
func (c *Checker) Annotate(ctx context.Context, kind finding.Kind, text string) (annotate.Result, error) {
	if err := ctx.Err(); err != nil {
		return annotate.Result{}, annotate.NewFatalError(err)
	}

	requestID := uuid.New().String()
	switch kind {
	case finding.KindGrammar:
	case finding.KindStyle:
		return annotate.Result{RequestID: requestID}, nil
	default:
		return annotate.Result{}, annotate.NewFatalError(fmt.Errorf("unknown finding kind: %q", kind))
	}

	misspellings := c.Check(text)
	errs := make([]finding.GrammarError, 0, len(misspellings))
	for i, m := range misspellings {
		message := fmt.Sprintf("%q is not in the dictionary", m.Word)
		if len(m.Suggestions) > 0 {
			message = fmt.Sprintf("Possible misspelling of %q", m.Suggestions[0])
		}
		errs = append(errs, finding.GrammarError{
			ID:           fmt.Sprintf("spelling_%d", i+1),
			OriginalText: m.Word,
			Message:      message,
			Suggestions:  m.Suggestions,
			Type:         string(finding.CategorySpelling),
			Context:      m.Context,
		})
	}

	findings, rejected := finding.FromGrammar(errs)
	log.Printf("[SpellCheck] Request %s: %d misspellings", requestID, len(findings))
	return annotate.Result{Findings: findings, Rejected: rejected, RequestID: requestID}, nil
}

type token struct {
	text         string
	rng          spanlocate.Range
	endsSentence bool
}

// tokenize splits text into words of letters, digits and inner
// apostrophes. A token ends a sentence when the next non-space character
// after it is a terminal punctuation mark.
func tokenize(text string) []token {
	var tokens []token
	start := -1

	flush := func(end int) {
		word := strings.TrimRight(text[start:end], "'’")
		if word != "" {
			tokens = append(tokens, token{text: word, rng: spanlocate.Range{Start: start, End: start + len(word)}})
		}
		start = -1
	}

	for i, r := range text {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
		isApostrophe := (r == '\'' || r == '’') && start >= 0
		switch {
		case isWord || isApostrophe:
			if start < 0 {
				start = i
			}
		default:
			if start >= 0 {
				flush(i)
			}
			if (r == '.' || r == '!' || r == '?' || r == '\n') && len(tokens) > 0 {
				tokens[len(tokens)-1].endsSentence = true
			}
		}
	}
	if start >= 0 {
		flush(len(text))
	}
	return tokens
}

// surrounding returns r widened by up to n whitespace-separated words on
// each side.
func surrounding(text string, r spanlocate.Range, n int) string {
	start := r.Start
	for words := 0; words < n && start > 0; words++ {
		start = skipSpaceBack(text, start)
		for start > 0 {
			prev, size := utf8.DecodeLastRuneInString(text[:start])
			if unicode.IsSpace(prev) {
				break
			}
			start -= size
		}
	}

	end := r.End
	for words := 0; words < n && end < len(text); words++ {
		end = skipSpaceForward(text, end)
		for end < len(text) {
			next, size := utf8.DecodeRuneInString(text[end:])
			if unicode.IsSpace(next) {
				break
			}
			end += size
		}
	}
	return strings.TrimSpace(text[start:end])
}

func skipSpaceBack(text string, i int) int {
	for i > 0 {
		prev, size := utf8.DecodeLastRuneInString(text[:i])
		if !unicode.IsSpace(prev) {
			break
		}
		i -= size
	}
	return i
}

func skipSpaceForward(text string, i int) int {
	for i < len(text) {
		next, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(next) {
			break
		}
		i += size
	}
	return i
}

func normalizeWord(word string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(word)), "’", "'")
}

func startsUpper(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(r)
}

func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(r)) + word[size:]
}

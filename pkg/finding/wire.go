package finding

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// GrammarError is the shape an annotator returns for grammar, punctuation
// and spelling problems.
type GrammarError struct {
	ID           string   `json:"id"`
	OriginalText string   `json:"originalText"`
	Message      string   `json:"message"`
	Suggestions  []string `json:"suggestions"`
	Type         string   `json:"type"`
	Context      string   `json:"context,omitempty"`
}

// StyleSuggestion is the shape an annotator returns for clarity,
// conciseness, tone and style improvements.
type StyleSuggestion struct {
	ID           string `json:"id"`
	OriginalText string `json:"originalText"`
	Message      string `json:"message"`
	Suggestion   string `json:"suggestion"`
	Type         string `json:"type"`
	Context      string `json:"context,omitempty"`
}

// GrammarResponse wraps a grammar pass.
type GrammarResponse struct {
	Errors []GrammarError `json:"errors"`
}

// StyleResponse wraps a style pass.
type StyleResponse struct {
	Suggestions []StyleSuggestion `json:"suggestions"`
}

// Rejection records a wire entry that was dropped at the boundary.
type Rejection struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// FromGrammar validates grammar errors and converts them to findings.
// Entries with no claimed text are rejected; unknown types fall back to
// the generic grammar category; missing or duplicate IDs are replaced.
func FromGrammar(errs []GrammarError) ([]Finding, []Rejection) {
	b := newBuilder(KindGrammar, len(errs))
	for i, e := range errs {
		var replacements []string
		for _, s := range e.Suggestions {
			if s = norm.NFC.String(s); s != "" {
				replacements = append(replacements, s)
			}
		}
		b.add(i, e.ID, e.OriginalText, e.Message, e.Type, e.Context, replacements)
	}
	return b.findings, b.rejected
}

// FromStyle validates style suggestions and converts them to findings.
func FromStyle(sugs []StyleSuggestion) ([]Finding, []Rejection) {
	b := newBuilder(KindStyle, len(sugs))
	for i, s := range sugs {
		var replacements []string
		if r := norm.NFC.String(s.Suggestion); r != "" {
			replacements = []string{r}
		}
		b.add(i, s.ID, s.OriginalText, s.Message, s.Type, s.Context, replacements)
	}
	return b.findings, b.rejected
}

type builder struct {
	kind     Kind
	seen     map[string]bool
	findings []Finding
	rejected []Rejection
}

func newBuilder(kind Kind, n int) *builder {
	return &builder{
		kind:     kind,
		seen:     make(map[string]bool, n),
		findings: make([]Finding, 0, n),
	}
}

func (b *builder) add(index int, id, claimed, message, typ, context string, replacements []string) {
	claimed = norm.NFC.String(claimed)
	if strings.TrimSpace(claimed) == "" {
		b.rejected = append(b.rejected, Rejection{Index: index, ID: id, Reason: "empty claimed text"})
		return
	}

	category := Category(strings.ToLower(strings.TrimSpace(typ)))
	if !ValidCategory(b.kind, category) {
		category = Category(b.kind)
	}

	id = strings.TrimSpace(id)
	if id == "" || b.seen[id] {
		id = fmt.Sprintf("%s_%s", b.kind, uuid.NewString()[:8])
	}
	b.seen[id] = true

	b.findings = append(b.findings, Finding{
		ID:           id,
		Kind:         b.kind,
		Category:     category,
		ClaimedText:  claimed,
		Message:      strings.TrimSpace(message),
		Replacements: replacements,
		Context:      norm.NFC.String(context),
	})
}

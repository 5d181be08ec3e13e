// Package finding models the claims an annotator makes about a document and
// resolves them to byte ranges with the span locator.
package finding

import (
	"fmt"
	"strings"

	"github.com/Code-Monger/InkPilot/pkg/spanlocate"
)

// Kind separates grammar findings from style findings. Each analysis pass
// produces one list per kind.
type Kind string

const (
	KindGrammar Kind = "grammar"
	KindStyle   Kind = "style"
)

// Kinds lists every kind in rendering priority order.
var Kinds = []Kind{KindGrammar, KindStyle}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindGrammar:
		return KindGrammar, nil
	case KindStyle:
		return KindStyle, nil
	}
	return "", fmt.Errorf("unknown finding kind: %q", s)
}

// Priority orders kinds when two findings start at the same offset.
func (k Kind) Priority() int {
	switch k {
	case KindGrammar:
		return 0
	case KindStyle:
		return 1
	default:
		return 2
	}
}

// Category is the annotator's classification of a finding. The matcher
// never looks at it.
type Category string

const (
	CategoryGrammar     Category = "grammar"
	CategoryPunctuation Category = "punctuation"
	CategorySpelling    Category = "spelling"

	CategoryClarity     Category = "clarity"
	CategoryConciseness Category = "conciseness"
	CategoryTone        Category = "tone"
	CategoryStyle       Category = "style"
)

var categoriesByKind = map[Kind][]Category{
	KindGrammar: {CategoryGrammar, CategoryPunctuation, CategorySpelling},
	KindStyle:   {CategoryClarity, CategoryConciseness, CategoryTone, CategoryStyle},
}

// ValidCategory reports whether c belongs to kind.
func ValidCategory(kind Kind, c Category) bool {
	for _, allowed := range categoriesByKind[kind] {
		if allowed == c {
			return true
		}
	}
	return false
}

// Finding is one claimed issue about a span of document text.
type Finding struct {
	ID           string            `json:"id"`
	Kind         Kind              `json:"kind"`
	Category     Category          `json:"category"`
	ClaimedText  string            `json:"claimed_text"`
	Message      string            `json:"message"`
	Replacements []string          `json:"replacements,omitempty"`
	Context      string            `json:"context,omitempty"`
	Range        *spanlocate.Range `json:"range,omitempty"`
}

// Resolved reports whether the finding has been located in the document.
// Unresolved findings are never rendered or applied.
func (f Finding) Resolved() bool {
	return f.Range != nil
}

// Actionable reports whether the finding can be applied.
func (f Finding) Actionable() bool {
	return f.Resolved() && len(f.Replacements) > 0
}

// HasReplacement reports whether s is one of the finding's replacements.
func (f Finding) HasReplacement(s string) bool {
	for _, r := range f.Replacements {
		if r == s {
			return true
		}
	}
	return false
}

// QualifiedID prefixes id with its kind, as in "style:1".
func QualifiedID(kind Kind, id string) string {
	return string(kind) + ":" + id
}

// UniqueIDs returns a copy of findings whose IDs differ from each other and
// from every ID in taken. A clashing ID is replaced by QualifiedID(kind, id),
// with a numeric suffix if that is taken as well. Annotators number grammar
// and style findings independently, so both lists of a pass often start at
// the same ID.
func UniqueIDs(kind Kind, findings, taken []Finding) []Finding {
	if len(findings) == 0 {
		return findings
	}
	used := make(map[string]bool, len(taken)+len(findings))
	for _, f := range taken {
		used[f.ID] = true
	}

	out := make([]Finding, len(findings))
	for i, f := range findings {
		if used[f.ID] {
			base := QualifiedID(kind, f.ID)
			id := base
			for n := 2; used[id]; n++ {
				id = fmt.Sprintf("%s_%d", base, n)
			}
			f.ID = id
		}
		used[f.ID] = true
		out[i] = f
	}
	return out
}

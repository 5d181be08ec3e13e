// Package spanlocate finds where a claimed phrase really sits in a document.
//
// Annotators are asked to copy text verbatim but often return it with
// whitespace collapsed, punctuation stripped or case changed. Locate first
// tries an exact search and then falls back to matching on the normalized
// form of both strings, mapping the normalized hit back to byte offsets in
// the original text.
package spanlocate

import (
	"fmt"
	"strings"
)

// Range is a half-open byte interval [Start, End) into a document.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int { return r.End - r.Start }

// Empty reports whether the range covers no bytes.
func (r Range) Empty() bool { return r.Start == r.End }

// Within reports whether r is well formed and fits in a text of length n.
func (r Range) Within(n int) bool {
	return r.Start >= 0 && r.Start <= r.End && r.End <= n
}

// Shift moves the range right by n bytes.
func (r Range) Shift(n int) Range {
	return Range{Start: r.Start + n, End: r.End + n}
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Locate returns the range of the first occurrence of needle in haystack.
// An empty needle, or one that normalizes to nothing, is never found.
func Locate(haystack, needle string) (Range, bool) {
	if needle == "" {
		return Range{}, false
	}
	if i := strings.Index(haystack, needle); i >= 0 {
		return Range{Start: i, End: i + len(needle)}, true
	}
	return NewProjection(haystack).locateNormalized(needle)
}

// Locate is the projection-backed form of the package-level Locate.
func (p *Projection) Locate(needle string) (Range, bool) {
	if needle == "" {
		return Range{}, false
	}
	if i := strings.Index(p.source, needle); i >= 0 {
		return Range{Start: i, End: i + len(needle)}, true
	}
	return p.locateNormalized(needle)
}

func (p *Projection) locateNormalized(needle string) (Range, bool) {
	n := Normalize(needle)
	if n == "" {
		return Range{}, false
	}
	idx := strings.Index(p.normalized, n)
	if idx < 0 {
		return Range{}, false
	}
	last := idx + len(n) - 1
	if last >= len(p.srcEnd) {
		return Range{}, false
	}
	return Range{Start: p.srcStart[idx], End: p.srcEnd[last]}, true
}

// LocateInContext prefers the occurrence of needle that falls inside the
// first occurrence of context. When context is empty, cannot be found, or
// does not contain needle, it behaves exactly like Locate.
func (p *Projection) LocateInContext(needle, context string) (Range, bool) {
	if needle == "" {
		return Range{}, false
	}
	if context != "" && context != needle {
		if cr, ok := p.Locate(context); ok {
			inner := NewProjection(p.source[cr.Start:cr.End])
			if r, ok := inner.Locate(needle); ok {
				return r.Shift(cr.Start), true
			}
		}
	}
	return p.Locate(needle)
}

package spanlocate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rune classes used by Normalize.
//
//	keep  - letters and decimal digits of any script, lower-cased
//	space - any unicode.IsSpace rune; a run becomes a single ' '
//	drop  - everything else (punctuation, symbols, marks, controls)
type runeClass uint8

const (
	classDrop runeClass = iota
	classKeep
	classSpace
)

func classify(r rune) runeClass {
	switch {
	case unicode.IsLetter(r), unicode.IsDigit(r):
		return classKeep
	case unicode.IsSpace(r):
		return classSpace
	default:
		return classDrop
	}
}

// Normalize folds s into the form used for fuzzy matching: dropped runes
// vanish, whitespace runs collapse to one space, kept runes are lower-cased
// and the result is trimmed. Dropping happens before collapsing, so
// "a , b" and "a, b" both normalize to "a b".
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch classify(r) {
		case classKeep:
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(unicode.ToLower(r))
		case classSpace:
			pendingSpace = true
		}
	}
	return b.String()
}

// Projection is the normalized form of a haystack together with the map
// from every normalized byte back to the source rune that produced it.
// Build it once per document text and reuse it for every needle.
type Projection struct {
	source     string
	normalized string
	// srcStart[i] and srcEnd[i] bound the source rune behind normalized byte i.
	srcStart []int
	srcEnd   []int
}

// NewProjection scans haystack once and records the normalized text and
// its index map. A collapsed space maps to the first rune of its run.
func NewProjection(haystack string) *Projection {
	p := &Projection{
		source:   haystack,
		srcStart: make([]int, 0, len(haystack)),
		srcEnd:   make([]int, 0, len(haystack)),
	}
	var b strings.Builder
	b.Grow(len(haystack))

	spaceStart, spaceEnd := -1, -1
	for i := 0; i < len(haystack); {
		r, size := utf8.DecodeRuneInString(haystack[i:])
		switch classify(r) {
		case classKeep:
			if spaceStart >= 0 && b.Len() > 0 {
				b.WriteByte(' ')
				p.srcStart = append(p.srcStart, spaceStart)
				p.srcEnd = append(p.srcEnd, spaceEnd)
			}
			spaceStart, spaceEnd = -1, -1
			n, _ := b.WriteRune(unicode.ToLower(r))
			for k := 0; k < n; k++ {
				p.srcStart = append(p.srcStart, i)
				p.srcEnd = append(p.srcEnd, i+size)
			}
		case classSpace:
			if spaceStart < 0 {
				spaceStart, spaceEnd = i, i+size
			}
		}
		i += size
	}
	p.normalized = b.String()
	return p
}

// Source returns the haystack the projection was built from.
func (p *Projection) Source() string { return p.source }

// Normalized returns Normalize(Source()).
func (p *Projection) Normalized() string { return p.normalized }

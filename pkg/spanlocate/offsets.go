package spanlocate

import (
	"unicode/utf8"
)

// OffsetTable converts byte offsets in a text to rune and UTF-16 offsets.
// Browsers count UTF-16 code units, so clients rendering highlights in a
// web page need the UTF-16 form; characters outside the BMP take two.
type OffsetTable struct {
	runes []int // runes[b] = rune offset of byte position b
	utf16 []int // utf16[b] = UTF-16 offset of byte position b
}

// NewOffsetTable builds the cumulative tables for text. Byte positions in
// the middle of a multi-byte rune map to the offset of that rune.
func NewOffsetTable(text string) *OffsetTable {
	t := &OffsetTable{
		runes: make([]int, len(text)+1),
		utf16: make([]int, len(text)+1),
	}
	runeCount, unitCount := 0, 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		for k := 0; k < size; k++ {
			t.runes[i+k] = runeCount
			t.utf16[i+k] = unitCount
		}
		runeCount++
		if r > 0xFFFF {
			unitCount += 2
		} else {
			unitCount++
		}
		i += size
	}
	t.runes[len(text)] = runeCount
	t.utf16[len(text)] = unitCount
	return t
}

// Runes returns the rune offset of byte offset b, clamped to the text.
func (t *OffsetTable) Runes(b int) int { return t.runes[t.clamp(b)] }

// UTF16 returns the UTF-16 offset of byte offset b, clamped to the text.
func (t *OffsetTable) UTF16(b int) int { return t.utf16[t.clamp(b)] }

// RuneRange converts a byte range to rune offsets.
func (t *OffsetTable) RuneRange(r Range) Range {
	return Range{Start: t.Runes(r.Start), End: t.Runes(r.End)}
}

// UTF16Range converts a byte range to UTF-16 offsets.
func (t *OffsetTable) UTF16Range(r Range) Range {
	return Range{Start: t.UTF16(r.Start), End: t.UTF16(r.End)}
}

func (t *OffsetTable) clamp(b int) int {
	if b < 0 {
		return 0
	}
	if b >= len(t.runes) {
		return len(t.runes) - 1
	}
	return b
}

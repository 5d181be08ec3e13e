// Package document holds the text being edited and the splice that applies
// a suggestion to it.
package document

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/Code-Monger/InkPilot/pkg/spanlocate"
)

// Document is an immutable snapshot of the edited text. Offsets into Text
// are byte offsets.
type Document struct {
	Text     string `json:"text"`
	Revision uint64 `json:"revision"`
}

// New returns revision 0 of text in Unicode NFC form, so that annotator
// output and document text compare byte for byte.
func New(text string) Document {
	return Document{Text: norm.NFC.String(text)}
}

// Len returns the document length in bytes.
func (d Document) Len() int {
	return len(d.Text)
}

// Slice returns the text covered by r.
func (d Document) Slice(r spanlocate.Range) (string, error) {
	if err := d.check(r); err != nil {
		return "", err
	}
	return d.Text[r.Start:r.End], nil
}

// Offsets returns a conversion table for the document's text.
func (d Document) Offsets() *spanlocate.OffsetTable {
	return spanlocate.NewOffsetTable(d.Text)
}

// ErrInvalidRange is matched by every RangeError.
var ErrInvalidRange = errors.New("invalid range")

// RangeError reports a range that cannot be applied to a document.
type RangeError struct {
	Range  spanlocate.Range
	Length int
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range %s invalid for document of %d bytes: %s", e.Range, e.Length, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidRange) hold.
func (e *RangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

func (d Document) check(r spanlocate.Range) error {
	switch {
	case r.Start < 0 || r.End > len(d.Text):
		return &RangeError{Range: r, Length: len(d.Text), Reason: "out of bounds"}
	case r.Start > r.End:
		return &RangeError{Range: r, Length: len(d.Text), Reason: "start after end"}
	case !boundary(d.Text, r.Start) || !boundary(d.Text, r.End):
		return &RangeError{Range: r, Length: len(d.Text), Reason: "splits a UTF-8 sequence"}
	}
	return nil
}

func boundary(s string, i int) bool {
	return i == 0 || i == len(s) || utf8.RuneStart(s[i])
}

// Apply replaces the bytes in r with replacement and returns the next
// revision. The document itself is not modified.
func Apply(doc Document, r spanlocate.Range, replacement string) (Document, error) {
	if err := doc.check(r); err != nil {
		return doc, err
	}
	replacement = norm.NFC.String(replacement)

	buf := make([]byte, 0, len(doc.Text)-r.Len()+len(replacement))
	buf = append(buf, doc.Text[:r.Start]...)
	buf = append(buf, replacement...)
	buf = append(buf, doc.Text[r.End:]...)

	return Document{Text: string(buf), Revision: doc.Revision + 1}, nil
}

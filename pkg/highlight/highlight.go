// Package highlight turns a document and its resolved findings into an
// ordered sequence of plain and highlighted segments.
package highlight

import (
	"sort"

	"github.com/Code-Monger/InkPilot/pkg/finding"
	"github.com/Code-Monger/InkPilot/pkg/spanlocate"
)

// Region is one highlighted span of the document.
type Region struct {
	Start     int              `json:"start"`
	End       int              `json:"end"`
	Kind      finding.Kind     `json:"kind"`
	Category  finding.Category `json:"category"`
	FindingID string           `json:"finding_id"`
	Message   string           `json:"message,omitempty"`
}

// Range returns the region's byte range.
func (r Region) Range() spanlocate.Range {
	return spanlocate.Range{Start: r.Start, End: r.End}
}

// Segment is a piece of the document. Region is nil for plain text.
type Segment struct {
	Text   string  `json:"text"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Region *Region `json:"region,omitempty"`
}

// Highlighted reports whether the segment carries a region.
func (s Segment) Highlighted() bool {
	return s.Region != nil
}

type candidate struct {
	region Region
	order  int
}

// Assemble partitions document into segments. Findings without a range or
// with a range that does not fit the document are skipped. Regions are laid
// out by start offset, grammar before style on ties, then input order; a
// region that starts inside an earlier one is dropped. Concatenating the
// segment texts reproduces document exactly.
func Assemble(document string, findings []finding.Finding) []Segment {
	candidates := make([]candidate, 0, len(findings))
	for i, f := range findings {
		if !f.Resolved() || !f.Range.Within(len(document)) || f.Range.Empty() {
			continue
		}
		candidates = append(candidates, candidate{
			region: Region{
				Start:     f.Range.Start,
				End:       f.Range.End,
				Kind:      f.Kind,
				Category:  f.Category,
				FindingID: f.ID,
				Message:   f.Message,
			},
			order: i,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.region.Start != b.region.Start {
			return a.region.Start < b.region.Start
		}
		if pa, pb := a.region.Kind.Priority(), b.region.Kind.Priority(); pa != pb {
			return pa < pb
		}
		return a.order < b.order
	})

	var segments []Segment
	cursor := 0
	for i := range candidates {
		region := candidates[i].region
		if region.Start < cursor {
			continue
		}
		if region.Start > cursor {
			segments = append(segments, plain(document, cursor, region.Start))
		}
		segments = append(segments, Segment{
			Text:   document[region.Start:region.End],
			Start:  region.Start,
			End:    region.End,
			Region: &region,
		})
		cursor = region.End
	}
	if cursor < len(document) {
		segments = append(segments, plain(document, cursor, len(document)))
	}
	return segments
}

func plain(document string, start, end int) Segment {
	return Segment{Text: document[start:end], Start: start, End: end}
}

// Regions returns the regions carried by segments, in document order.
func Regions(segments []Segment) []Region {
	var regions []Region
	for _, s := range segments {
		if s.Region != nil {
			regions = append(regions, *s.Region)
		}
	}
	return regions
}

// Text concatenates the segment texts.
func Text(segments []Segment) string {
	n := 0
	for _, s := range segments {
		n += len(s.Text)
	}
	buf := make([]byte, 0, n)
	for _, s := range segments {
		buf = append(buf, s.Text...)
	}
	return string(buf)
}

package highlight

import (
	"fmt"
	"html"
	"strings"

	"github.com/fatih/color"

	"github.com/Code-Monger/InkPilot/pkg/finding"
)

var (
	grammarColor = color.New(color.FgRed, color.Underline)
	styleColor   = color.New(color.FgBlue, color.Underline)
)

// RenderPlain writes highlighted segments as [text]{kind/category}.
func RenderPlain(segments []Segment) string {
	var sb strings.Builder
	for _, s := range segments {
		if s.Region == nil {
			sb.WriteString(s.Text)
			continue
		}
		fmt.Fprintf(&sb, "[%s]{%s/%s}", s.Text, s.Region.Kind, s.Region.Category)
	}
	return sb.String()
}

// RenderANSI colours grammar regions red and style regions blue. Colour
// output follows color.NoColor, so piping to a file yields plain text.
func RenderANSI(segments []Segment) string {
	var sb strings.Builder
	for _, s := range segments {
		if s.Region == nil {
			sb.WriteString(s.Text)
			continue
		}
		sb.WriteString(colorFor(s.Region.Kind).Sprint(s.Text))
	}
	return sb.String()
}

func colorFor(kind finding.Kind) *color.Color {
	if kind == finding.KindStyle {
		return styleColor
	}
	return grammarColor
}

// RenderHTML escapes the document and wraps each region in a mark element
// whose class is the finding kind.
func RenderHTML(segments []Segment) string {
	var sb strings.Builder
	for _, s := range segments {
		if s.Region == nil {
			sb.WriteString(html.EscapeString(s.Text))
			continue
		}
		fmt.Fprintf(&sb, `<mark class="%s %s" data-finding="%s"`,
			html.EscapeString(string(s.Region.Kind)),
			html.EscapeString(string(s.Region.Category)),
			html.EscapeString(s.Region.FindingID))
		if s.Region.Message != "" {
			fmt.Fprintf(&sb, ` title="%s"`, html.EscapeString(s.Region.Message))
		}
		sb.WriteString(">")
		sb.WriteString(html.EscapeString(s.Text))
		sb.WriteString("</mark>")
	}
	return sb.String()
}

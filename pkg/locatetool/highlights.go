package locatetool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/text/unicode/norm"

	"github.com/Code-Monger/InkPilot/pkg/finding"
	"github.com/Code-Monger/InkPilot/pkg/highlight"
)

// findingInput accepts both the annotator wire shapes and Finding itself.
type findingInput struct {
	finding.Finding
	OriginalText string   `json:"originalText"`
	Suggestions  []string `json:"suggestions"`
	Suggestion   string   `json:"suggestion"`
	Type         string   `json:"type"`
}

func (in findingInput) kind(fallback finding.Kind) finding.Kind {
	switch {
	case in.Kind != "":
		if k, err := finding.ParseKind(string(in.Kind)); err == nil {
			return k
		}
		return in.Kind
	case fallback != "":
		return fallback
	case in.Suggestion != "":
		return finding.KindStyle
	case finding.ValidCategory(finding.KindStyle, finding.Category(in.Type)):
		return finding.KindStyle
	case finding.ValidCategory(finding.KindStyle, in.Category):
		return finding.KindStyle
	}
	return finding.KindGrammar
}

// ParseFindings decodes a findings argument given as a JSON array, or as
// the decoded array itself, and validates every entry the way annotator
// output is validated. fallback sets the kind of entries that carry none.
func ParseFindings(value interface{}, fallback finding.Kind) ([]finding.Finding, []finding.Rejection, error) {
	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []interface{}:
		var err error
		raw, err = json.Marshal(v)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode findings: %w", err)
		}
	default:
		return nil, nil, fmt.Errorf("findings must be an array")
	}

	var inputs []findingInput
	if err := json.Unmarshal(raw, &inputs); err != nil {
		return nil, nil, fmt.Errorf("failed to parse findings: %w", err)
	}

	var grammarErrs []finding.GrammarError
	var styleSugs []finding.StyleSuggestion
	var grammarIdx, styleIdx []int
	for i, in := range inputs {
		claimed := in.OriginalText
		if claimed == "" {
			claimed = in.ClaimedText
		}
		category := in.Type
		if category == "" {
			category = string(in.Category)
		}

		switch in.kind(fallback) {
		case finding.KindStyle:
			suggestion := in.Suggestion
			if suggestion == "" && len(in.Replacements) > 0 {
				suggestion = in.Replacements[0]
			}
			styleSugs = append(styleSugs, finding.StyleSuggestion{
				ID: in.ID, OriginalText: claimed, Message: in.Message,
				Suggestion: suggestion, Type: category, Context: in.Context,
			})
			styleIdx = append(styleIdx, i)
		case finding.KindGrammar:
			suggestions := in.Suggestions
			if len(suggestions) == 0 {
				suggestions = in.Replacements
			}
			grammarErrs = append(grammarErrs, finding.GrammarError{
				ID: in.ID, OriginalText: claimed, Message: in.Message,
				Suggestions: suggestions, Type: category, Context: in.Context,
			})
			grammarIdx = append(grammarIdx, i)
		default:
			return nil, nil, fmt.Errorf("finding %d: unknown finding kind: %q", i, in.Kind)
		}
	}

	grammarFindings, grammarRejected := finding.FromGrammar(grammarErrs)
	styleFindings, styleRejected := finding.FromStyle(styleSugs)
	// IDs must stay unique across both kinds of one call
	styleFindings = finding.UniqueIDs(finding.KindStyle, styleFindings, grammarFindings)

	// Report rejections by their position in the caller's array
	var rejected []finding.Rejection
	for _, r := range grammarRejected {
		r.Index = grammarIdx[r.Index]
		rejected = append(rejected, r)
	}
	for _, r := range styleRejected {
		r.Index = styleIdx[r.Index]
		rejected = append(rejected, r)
	}

	return append(grammarFindings, styleFindings...), rejected, nil
}

// FormatRegions lists the highlighted regions one per line.
func FormatRegions(segments []highlight.Segment, findings []finding.Finding) string {
	byID := make(map[string]finding.Finding, len(findings))
	for _, f := range findings {
		byID[f.ID] = f
	}

	var sb strings.Builder
	n := 0
	for _, s := range segments {
		if s.Region == nil {
			continue
		}
		n++
		fmt.Fprintf(&sb, "%d. %s %s/%s %s: %q", n, s.Region.Range(), s.Region.Kind, s.Region.Category, s.Region.FindingID, s.Text)
		if f, ok := byID[s.Region.FindingID]; ok && len(f.Replacements) > 0 {
			fmt.Fprintf(&sb, " -> %s", strings.Join(f.Replacements, " | "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// HandleHighlights returns the highlights handler locating findings with
// opts
func HandleHighlights(opts finding.ResolveOptions) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		arguments := request.Params.Arguments

		text, ok := arguments["text"].(string)
		if !ok {
			return nil, fmt.Errorf("text must be a string")
		}
		// Claims are NFC at the boundary, so the text must be too
		text = norm.NFC.String(text)

		var fallback finding.Kind
		if kindStr, ok := arguments["kind"].(string); ok && kindStr != "" {
			kind, err := finding.ParseKind(kindStr)
			if err != nil {
				return nil, err
			}
			fallback = kind
		}

		findings, rejected, err := ParseFindings(arguments["findings"], fallback)
		if err != nil {
			return nil, err
		}

		resolved, dropped := finding.Resolve(text, findings, opts)
		segments := highlight.Assemble(text, resolved)
		regions := highlight.Regions(segments)

		resultText := fmt.Sprintf("Located %d of %d findings (%d not found, %d rejected), %d highlighted\n\n",
			len(resolved), len(findings), dropped, len(rejected), len(regions))
		for _, r := range rejected {
			resultText += fmt.Sprintf("Rejected finding %d: %s\n", r.Index, r.Reason)
		}
		if len(rejected) > 0 {
			resultText += "\n"
		}
		if len(regions) > 0 {
			resultText += "Regions:\n" + FormatRegions(segments, resolved) + "\n"
		}
		resultText += "Plain:\n" + highlight.RenderPlain(segments) + "\n\n"
		resultText += "HTML:\n" + highlight.RenderHTML(segments) + "\n"

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: resultText,
				},
			},
		}, nil
	}
}

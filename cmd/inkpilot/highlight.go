package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Code-Monger/InkPilot/pkg/finding"
	"github.com/Code-Monger/InkPilot/pkg/highlight"
	"github.com/Code-Monger/InkPilot/pkg/locatetool"
)

var highlightCmd = &cobra.Command{
	Use:   "highlight [flags] file",
	Short: "Render a file with its findings highlighted",
	Long: `Highlight locates each finding in the file and renders the non-overlapping
regions. Findings come from a JSON file in the annotator's wire format, or from
the offline spell checker when --findings is not given.`,
	Args: cobra.ExactArgs(1),
	RunE: runHighlight,
}

func init() {
	addFindingsFlags(highlightCmd)
	highlightCmd.Flags().String("format", "ansi", "output format (ansi|plain|html|json|regions)")
}

func runHighlight(cmd *cobra.Command, args []string) error {
	text, err := readInput(args[0])
	if err != nil {
		return err
	}
	findings, err := loadFindings(cmd, text)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")

	resolved, dropped := finding.Resolve(text, findings, resolveOptions(cmd))
	if dropped > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d findings could not be located\n", dropped, len(findings))
	}
	segments := highlight.Assemble(text, resolved)

	switch format {
	case "ansi":
		fmt.Fprint(os.Stdout, highlight.RenderANSI(segments))
	case "plain":
		fmt.Fprint(os.Stdout, highlight.RenderPlain(segments))
	case "html":
		fmt.Fprint(os.Stdout, highlight.RenderHTML(segments))
	case "regions":
		fmt.Fprint(os.Stdout, locatetool.FormatRegions(segments, resolved))
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Findings []finding.Finding   `json:"findings"`
			Segments []highlight.Segment `json:"segments"`
		}{resolved, segments})
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}

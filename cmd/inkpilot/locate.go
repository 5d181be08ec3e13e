package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Code-Monger/InkPilot/pkg/locatetool"
)

var locateCmd = &cobra.Command{
	Use:   "locate [flags] file",
	Short: "Find the span of a file that a claimed phrase refers to",
	Long: `Locate finds claimed text in a file, first exactly and then ignoring case,
punctuation and runs of whitespace, and prints its byte, rune and UTF-16 offsets.`,
	Args: cobra.ExactArgs(1),
	RunE: runLocate,
}

func init() {
	locateCmd.Flags().String("claim", "", "the claimed text (required)")
	locateCmd.Flags().String("near", "", "a longer phrase around the claim, to pick among repeats")
	locateCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	locateCmd.MarkFlagRequired("claim")
}

func runLocate(cmd *cobra.Command, args []string) error {
	text, err := readInput(args[0])
	if err != nil {
		return err
	}

	claim, _ := cmd.Flags().GetString("claim")
	near, _ := cmd.Flags().GetString("near")
	format, _ := cmd.Flags().GetString("format")

	m, found := locatetool.LocateSpan(text, claim, near)

	switch format {
	case "pretty":
		if !found {
			return fmt.Errorf("no match for %q", claim)
		}
		fmt.Fprintf(os.Stdout, "bytes  %s\nrunes  %s\nutf16  %s\ntext   %q\n", m.Bytes, m.Runes, m.UTF16, m.Text)
		return nil
	case "json":
		out := struct {
			Found bool              `json:"found"`
			Match *locatetool.Match `json:"match,omitempty"`
		}{Found: found}
		if found {
			out.Match = &m
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

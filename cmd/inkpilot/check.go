package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Code-Monger/InkPilot/pkg/spellcheck"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] file",
	Short: "Spell check a file with the offline dictionary",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringSlice("words", nil, "extra words to accept")
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	text, err := readInput(args[0])
	if err != nil {
		return err
	}

	words, _ := cmd.Flags().GetStringSlice("words")
	format, _ := cmd.Flags().GetString("format")

	results := spellcheck.NewChecker(words...).Check(text)

	switch format {
	case "pretty":
		if len(results) == 0 {
			fmt.Fprintln(os.Stdout, "No spelling issues found.")
			return nil
		}
		bad := color.New(color.FgRed, color.Bold)
		for _, m := range results {
			fmt.Fprintf(os.Stdout, "%s %s", m.Range, bad.Sprint(m.Word))
			if len(m.Suggestions) > 0 {
				fmt.Fprintf(os.Stdout, " -> %v", m.Suggestions)
			}
			fmt.Fprintf(os.Stdout, "\n    %s\n", m.Context)
		}
		return nil
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Code-Monger/InkPilot/pkg/finding"
	"github.com/Code-Monger/InkPilot/pkg/session"
)

var applyCmd = &cobra.Command{
	Use:   "apply [flags] file finding-id",
	Short: "Apply one finding's suggestion to a file",
	Long: `Apply locates the findings in the file, replaces the span of the named finding
and prints the edited text. Without --replacement the finding's first suggestion
is used; --replacement "" deletes the span. When a grammar and a style finding
share an ID, name the style one as style:ID. With --write the file is rewritten
in place.`,
	Args: cobra.ExactArgs(2),
	RunE: runApply,
}

func init() {
	addFindingsFlags(applyCmd)
	applyCmd.Flags().String("replacement", "", "replacement text, empty to delete (default: first suggestion)")
	applyCmd.Flags().BoolP("write", "w", false, "write the result back to the file")
}

func runApply(cmd *cobra.Command, args []string) error {
	path, findingID := args[0], args[1]

	text, err := readInput(path)
	if err != nil {
		return err
	}
	findings, err := loadFindings(cmd, text)
	if err != nil {
		return err
	}
	var replacement *string
	if cmd.Flags().Changed("replacement") {
		r, _ := cmd.Flags().GetString("replacement")
		replacement = &r
	}
	write, _ := cmd.Flags().GetBool("write")
	if write && path == "-" {
		return fmt.Errorf("cannot write back to standard input")
	}

	store := session.NewStore(resolveOptions(cmd))
	sess := store.Open("", "", "", path, text)
	for _, kind := range []finding.Kind{finding.KindGrammar, finding.KindStyle} {
		var ofKind []finding.Finding
		for _, f := range findings {
			if f.Kind == kind {
				ofKind = append(ofKind, f)
			}
		}
		if _, err := store.CompleteAnalysis(sess.ID, kind, ofKind); err != nil {
			return err
		}
	}

	sess, err = store.ApplySuggestion(sess.ID, "", findingID, replacement)
	if err != nil {
		return err
	}

	if write {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(sess.Document.Text), info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return nil
	}
	fmt.Fprint(os.Stdout, sess.Document.Text)
	return nil
}

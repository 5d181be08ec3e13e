package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Code-Monger/InkPilot/pkg/document"
	"github.com/Code-Monger/InkPilot/pkg/finding"
	"github.com/Code-Monger/InkPilot/pkg/locatetool"
	"github.com/Code-Monger/InkPilot/pkg/spellcheck"
)

// readInput reads path, or standard input when path is "-".
func readInput(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return document.New(string(data)).Text, nil
}

// loadFindings reads the --findings file, or runs the offline spell
// checker over text when none was given.
func loadFindings(cmd *cobra.Command, text string) ([]finding.Finding, error) {
	path, err := cmd.Flags().GetString("findings")
	if err != nil {
		return nil, fmt.Errorf("failed to get findings flag: %w", err)
	}

	if path == "" {
		result, err := spellcheck.NewChecker().Annotate(cmd.Context(), finding.KindGrammar, text)
		if err != nil {
			return nil, err
		}
		return result.Findings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read findings: %w", err)
	}

	kindFlag, _ := cmd.Flags().GetString("kind")
	var fallback finding.Kind
	if kindFlag != "" {
		if fallback, err = finding.ParseKind(kindFlag); err != nil {
			return nil, err
		}
	}

	findings, rejected, err := locatetool.ParseFindings(string(data), fallback)
	if err != nil {
		return nil, err
	}
	for _, r := range rejected {
		fmt.Fprintf(os.Stderr, "skipping finding %d: %s\n", r.Index, r.Reason)
	}
	return findings, nil
}

func addFindingsFlags(cmd *cobra.Command) {
	cmd.Flags().String("findings", "", "JSON file of findings (default: run the spell checker)")
	cmd.Flags().String("kind", "", "kind of findings that carry none (grammar|style)")
	cmd.Flags().Bool("context", true, "anchor repeated phrases on each finding's context")
}

func resolveOptions(cmd *cobra.Command) finding.ResolveOptions {
	useContext, _ := cmd.Flags().GetBool("context")
	return finding.ResolveOptions{UseContext: useContext}
}

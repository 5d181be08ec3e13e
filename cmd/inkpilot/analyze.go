package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Code-Monger/InkPilot/pkg/analysis"
	"github.com/Code-Monger/InkPilot/pkg/config"
	"github.com/Code-Monger/InkPilot/pkg/finding"
	"github.com/Code-Monger/InkPilot/pkg/highlight"
	"github.com/Code-Monger/InkPilot/pkg/session"
	"github.com/Code-Monger/InkPilot/pkg/spellcheck"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] file",
	Short: "Run the configured annotator over a file",
	Long: `Analyze runs grammar and style passes over the file with the annotator the
configuration selects and prints the highlighted result. Without a model API key
the offline spell checker is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("config", "", "path to a YAML or TOML config file")
	analyzeCmd.Flags().StringSlice("kinds", nil, "analyses to run (grammar,style)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text, err := readInput(args[0])
	if err != nil {
		return err
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	kindNames, _ := cmd.Flags().GetStringSlice("kinds")
	kinds := make([]finding.Kind, 0, len(kindNames))
	for _, name := range kindNames {
		kind, err := finding.ParseKind(name)
		if err != nil {
			return err
		}
		kinds = append(kinds, kind)
	}

	checker := spellcheck.NewChecker(cfg.Spellcheck.Words...)
	store := session.NewStore(finding.ResolveOptions{UseContext: cfg.Matching.UseContext})
	sess := store.Open("", "", "", args[0], text)

	analyzer := analysis.NewAnalyzer(store, analysis.NewAnnotator(cfg, checker), nil, nil)
	result, err := analyzer.Analyze(cmd.Context(), sess.ID, kinds)
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stderr, analysis.FormatResult(result))
	segments, err := store.Highlights(sess.ID)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, highlight.RenderANSI(segments))
	return result.Err()
}

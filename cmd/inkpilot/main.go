package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "inkpilot",
	Short: "Locate, highlight and apply writing suggestions",
	Long: `inkpilot works on plain text files the way the InkPilot server works on editor
sessions: it locates the text an annotator refers to, assembles non-overlapping
highlights and applies suggestions by finding ID.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		colorFlag, err := cmd.Flags().GetString("color")
		if err != nil {
			return fmt.Errorf("failed to get color flag: %w", err)
		}
		switch colorFlag {
		case "on":
			color.NoColor = false
		case "off":
			color.NoColor = true
		case "auto":
		default:
			return fmt.Errorf("unknown color mode: %s", colorFlag)
		}
		return nil
	},
}

func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(highlightCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(analyzeCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

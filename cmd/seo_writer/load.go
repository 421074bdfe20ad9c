package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/seo-writer/internal/status"
)

var loadCmd = &cobra.Command{
	Use:   "load <session-id>",
	Short: "Show the latest article of a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

var (
	loadShowAnalysis bool
	loadJSON         bool
)

func init() {
	loadCmd.Flags().BoolVar(&loadShowAnalysis, "show-analysis", false, "Print the competitor analysis")
	loadCmd.Flags().BoolVar(&loadJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	orch, cleanup, err := newOrchestrator(ctx, cfg, status.New(), false)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := orch.Load(ctx, args[0])
	if err != nil {
		return err
	}

	return printResult(cmd.OutOrStdout(), result, loadJSON, loadShowAnalysis)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/seo-writer/internal/observability"
	"github.com/jonathan/seo-writer/internal/status"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past sessions grouped by keyword",
	RunE:  runHistory,
}

var historyJSON bool

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the history as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
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

	history, err := orch.History(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if historyJSON {
		data, err := json.MarshalIndent(history, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	observability.NewPrinter(out).PrintHistory(history)
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/seo-writer/internal/generation"
	"github.com/jonathan/seo-writer/internal/status"
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Rate the current article and write the next version",
	Long: `Records a rating and optional feedback on a generation of the session, then writes the next
version using every prior version and its feedback. Each session allows a limited number of
regenerations after version 1.`,
	RunE: runRegenerate,
}

var (
	regenSessionID    string
	regenGenerationID int64
	regenRating       string
	regenFeedback     string
	regenShowAnalysis bool
	regenJSON         bool
)

func init() {
	regenerateCmd.Flags().StringVarP(&regenSessionID, "session", "s", "", "Session ID (required)")
	regenerateCmd.Flags().Int64Var(&regenGenerationID, "generation", 0, "Generation ID being rated (defaults to the latest)")
	regenerateCmd.Flags().StringVarP(&regenRating, "rating", "r", "", "Rating for the generation: good or bad (default bad)")
	regenerateCmd.Flags().StringVarP(&regenFeedback, "feedback", "f", "", "Free-text feedback for the next version")
	regenerateCmd.Flags().BoolVar(&regenShowAnalysis, "show-analysis", false, "Print the competitor analysis")
	regenerateCmd.Flags().BoolVar(&regenJSON, "json", false, "Print the result as JSON")

	if err := regenerateCmd.MarkFlagRequired("session"); err != nil {
		panic(fmt.Sprintf("failed to mark session flag as required: %v", err))
	}

	rootCmd.AddCommand(regenerateCmd)
}

func runRegenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	orch, cleanup, err := newOrchestrator(ctx, cfg, status.New(), true)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := orch.Regenerate(ctx, generation.RegenerateRequest{
		SessionID:    regenSessionID,
		GenerationID: regenGenerationID,
		Rating:       regenRating,
		Feedback:     regenFeedback,
	})
	if err != nil {
		return err
	}

	return printResult(cmd.OutOrStdout(), result, regenJSON, regenShowAnalysis)
}

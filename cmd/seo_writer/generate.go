package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/seo-writer/internal/generation"
	"github.com/jonathan/seo-writer/internal/observability"
	"github.com/jonathan/seo-writer/internal/status"
)

var generateCmd = &cobra.Command{
	Use:   "generate <keyword>",
	Short: "Research a keyword and write a new article",
	Long: `Searches the web for the keyword, crawls the top results, analyzes the competing pages
and writes an SEO article. The result is saved as version 1 of a new session.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

var (
	generateShowAnalysis bool
	generateJSON         bool
)

func init() {
	generateCmd.Flags().BoolVar(&generateShowAnalysis, "show-analysis", false, "Print the competitor analysis")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
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

	result, err := orch.Generate(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	return printResult(cmd.OutOrStdout(), result, generateJSON, generateShowAnalysis)
}

// printResult writes a pipeline result as JSON or as formatted boxes.
func printResult(out io.Writer, result *generation.Result, asJSON, showAnalysis bool) error {
	if asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	printer := observability.NewPrinter(out)
	printer.PrintSources(result.SearchResults)
	if showAnalysis {
		printer.PrintAnalysis(result.Analysis)
	}
	printer.PrintArticle(result.Keyword, result.Version, result.MaxReached, result.Article)
	_, err := fmt.Fprintf(out, "Session: %s  Generation: %d\n", result.SessionID, result.GenerationID)
	return err
}

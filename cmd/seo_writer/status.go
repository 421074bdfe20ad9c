package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/seo-writer/internal/fetch"
	"github.com/jonathan/seo-writer/internal/observability"
	"github.com/jonathan/seo-writer/internal/status"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what a running server is generating",
	Long:  `Queries the /api/status endpoint of a running seo_writer server. With --watch it polls every few seconds until interrupted.`,
	RunE:  runStatus,
}

var (
	statusServerURL string
	statusWatch     bool
	statusInterval  time.Duration
)

func init() {
	statusCmd.Flags().StringVar(&statusServerURL, "server", "http://localhost:8080", "Base URL of the running server")
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Keep polling until interrupted")
	statusCmd.Flags().DurationVar(&statusInterval, "interval", 3*time.Second, "Polling interval for --watch")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	printer := observability.NewPrinter(cmd.OutOrStdout())

	for {
		current, err := fetchStatus(ctx, statusServerURL)
		if err != nil {
			return err
		}
		printer.PrintStatus(current)

		if !statusWatch {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(statusInterval):
		}
	}
}

// fetchStatus reads the global generation status from a running server.
func fetchStatus(ctx context.Context, baseURL string) (status.Status, error) {
	endpoint := strings.TrimRight(baseURL, "/") + "/api/status"
	result, err := fetch.URL(ctx, endpoint, &fetch.Options{
		Timeout: fetch.DefaultTimeout,
		Headers: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return status.Status{}, err
	}

	var current status.Status
	if err := json.Unmarshal([]byte(result.HTML), &current); err != nil {
		return status.Status{}, fmt.Errorf("failed to parse status response: %w", err)
	}
	return current, nil
}

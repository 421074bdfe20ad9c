package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/seo-writer/internal/server"
	"github.com/jonathan/seo-writer/internal/status"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes JSON endpoints for generating, regenerating and loading articles, plus the global generation status.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT env var or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	orch, cleanup, err := newOrchestrator(context.Background(), cfg, status.New(), true)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:       cfg.Port,
		Service:    orch,
		Status:     orch.Reporter(),
		OnShutdown: cleanup,
	})
	if err != nil {
		cleanup()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

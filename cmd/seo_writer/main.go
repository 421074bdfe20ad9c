// Package main provides the seo_writer CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "seo_writer",
	Short: "SEO blog article writer",
	Long: `seo_writer researches the top search results for a keyword, analyzes the competing pages
with Gemini and writes an SEO-optimized article. Articles can be rated and regenerated
with feedback a limited number of times per session.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

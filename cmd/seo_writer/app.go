package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/seo-writer/internal/config"
	"github.com/jonathan/seo-writer/internal/crawling"
	"github.com/jonathan/seo-writer/internal/db"
	"github.com/jonathan/seo-writer/internal/db/sqlite"
	"github.com/jonathan/seo-writer/internal/drafting"
	"github.com/jonathan/seo-writer/internal/generation"
	"github.com/jonathan/seo-writer/internal/llm"
	"github.com/jonathan/seo-writer/internal/status"
)

// Flags shared by every command
var (
	configPath  string
	apiKey      string
	model       string
	databaseURL string
	sqlitePath  string
	language    string
	tone        string
	useBrowser  bool
	verbose     bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to config.json file (values can be overridden by environment and flags)")
	flags.StringVar(&apiKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY env var)")
	flags.StringVar(&model, "model", "", "Gemini model for article generation (defaults to GEMINI_MODEL env var)")
	flags.StringVar(&databaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var; SQLite is used when empty)")
	flags.StringVar(&sqlitePath, "sqlite-path", "", "SQLite database file (defaults to SQLITE_PATH env var or "+config.DefaultSQLitePath+")")
	flags.StringVar(&language, "language", "", "Output language for articles")
	flags.StringVar(&tone, "tone", "", "Writing tone for articles")
	flags.BoolVar(&useBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

// resolveConfig layers flags over environment over config file over built-in defaults.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.FromEnv()

	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		if err := fileCfg.Validate(); err != nil {
			return config.Config{}, err
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())

	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("api-key") {
		cfg.APIKey = apiKey
	}
	if flags.Changed("model") {
		cfg.Model = model
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = databaseURL
	}
	if flags.Changed("sqlite-path") {
		cfg.SQLitePath = sqlitePath
	}
	if flags.Changed("language") {
		cfg.Language = language
	}
	if flags.Changed("tone") {
		cfg.Tone = tone
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = useBrowser
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openStore connects to PostgreSQL when a database URL is configured and falls back to SQLite.
func openStore(ctx context.Context, cfg config.Config) (generation.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		if cfg.Verbose {
			log.Printf("[STORE] Using PostgreSQL")
		}
		return database, database.Close, nil
	}

	store, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Verbose {
		log.Printf("[STORE] Using SQLite at %s", cfg.SQLitePath)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Printf("[STORE] Failed to close SQLite store: %v", err)
		}
	}, nil
}

// newLLMClient builds the Gemini client, applying the configured model override.
func newLLMClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	llmConfig := llm.DefaultConfig()
	if cfg.Model != "" {
		llmConfig = llmConfig.WithModel(llm.TierStandard, cfg.Model)
	}
	return llm.NewClient(ctx, llmConfig, cfg.APIKey)
}

// newOrchestrator wires the store and, when withModel is set, the crawler and Gemini writer.
// Commands that only read stored sessions pass withModel=false and need no API key.
// The returned cleanup closes everything that was opened.
func newOrchestrator(ctx context.Context, cfg config.Config, reporter *status.Reporter, withModel bool) (*generation.Orchestrator, func(), error) {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var (
		researcher generation.Researcher
		writer     generation.Writer
	)
	cleanup := closeStore

	if withModel {
		client, err := newLLMClient(ctx, cfg)
		if err != nil {
			closeStore()
			return nil, nil, err
		}
		cleanup = func() {
			if err := client.Close(); err != nil {
				log.Printf("Failed to close LLM client: %v", err)
			}
			closeStore()
		}

		researcher = crawling.NewCrawler(cfg.SearchResults, cfg.UseBrowser, cfg.Verbose)
		writer = drafting.NewWriter(client, drafting.Options{
			Language: cfg.Language,
			Tone:     cfg.Tone,
			Service: drafting.Service{
				Name:        cfg.ServiceName,
				Description: cfg.ServiceDescription,
				URL:         cfg.ServiceURL,
			},
			Tier: llm.TierStandard,
		})
	}

	orch := generation.New(store, researcher, writer, reporter, generation.Options{
		MaxRegenerations: cfg.Regenerations(),
		Verbose:          cfg.Verbose,
	})
	return orch, cleanup, nil
}

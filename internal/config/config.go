// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Default values applied by Defaults and MergeWithDefaults
const (
	DefaultMaxRegenerations = 3
	DefaultSearchResults    = 5
	DefaultLanguage         = "English"
	DefaultTone             = "friendly, informative"
	DefaultPort             = 8080
	DefaultSQLitePath       = "data/seo.db"
)

// Config represents the configuration that can be loaded from a JSON file or the environment.
// All fields are optional; missing values use defaults or CLI flags.
type Config struct {
	// LLM
	APIKey string `json:"api_key,omitempty"` // Gemini API key
	Model  string `json:"model,omitempty"`   // Overrides the standard-tier model

	// Storage: PostgreSQL when DatabaseURL is set, otherwise SQLite at SQLitePath
	DatabaseURL string `json:"database_url,omitempty"`
	SQLitePath  string `json:"sqlite_path,omitempty"`

	// Service promoted inside generated articles
	ServiceName        string `json:"service_name,omitempty"`
	ServiceDescription string `json:"service_description,omitempty"`
	ServiceURL         string `json:"service_url,omitempty" validate:"omitempty,url"`

	// Limits. MaxRegenerations is nil when unset; an explicit zero disables regeneration.
	MaxRegenerations *int `json:"max_regenerations,omitempty" validate:"omitempty,gte=0,lte=20"`
	SearchResults    int `json:"search_results,omitempty" validate:"gte=0,lte=10"`

	// Content
	Language string `json:"language,omitempty"`
	Tone     string `json:"tone,omitempty"`

	// Behavior
	Port       int  `json:"port,omitempty" validate:"gte=0,lte=65535"`
	UseBrowser bool `json:"use_browser,omitempty"` // Use headless browser for SPA sites
	Verbose    bool `json:"verbose,omitempty"`     // Print detailed debug information
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		SQLitePath:       DefaultSQLitePath,
		MaxRegenerations: intPtr(DefaultMaxRegenerations),
		SearchResults:    DefaultSearchResults,
		Language:         DefaultLanguage,
		Tone:             DefaultTone,
		Port:             DefaultPort,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads configuration from environment variables.
// Unset or unparseable numeric variables are left at zero, or nil for MAX_REGENERATIONS.
func FromEnv() Config {
	return Config{
		APIKey:             os.Getenv("GEMINI_API_KEY"),
		Model:              os.Getenv("GEMINI_MODEL"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SQLitePath:         os.Getenv("SQLITE_PATH"),
		ServiceName:        os.Getenv("SERVICE_NAME"),
		ServiceDescription: os.Getenv("SERVICE_DESCRIPTION"),
		ServiceURL:         os.Getenv("SERVICE_URL"),
		MaxRegenerations:   envIntPtr("MAX_REGENERATIONS"),
		SearchResults:      envInt("SEARCH_RESULTS_COUNT"),
		Language:           os.Getenv("CONTENT_LANGUAGE"),
		Tone:               os.Getenv("CONTENT_TONE"),
		Port:               envInt("PORT"),
		UseBrowser:         envBool("USE_BROWSER"),
		Verbose:            envBool("VERBOSE"),
	}
}

// Validate checks that the configuration has valid values.
// Required fields are checked by the commands that need them.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("config error: %s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to layer config file, environment and built-in values under CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	mergeString(&result.APIKey, defaults.APIKey)
	mergeString(&result.Model, defaults.Model)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)
	mergeString(&result.SQLitePath, defaults.SQLitePath)
	mergeString(&result.ServiceName, defaults.ServiceName)
	mergeString(&result.ServiceDescription, defaults.ServiceDescription)
	mergeString(&result.ServiceURL, defaults.ServiceURL)
	mergeString(&result.Language, defaults.Language)
	mergeString(&result.Tone, defaults.Tone)

	if result.MaxRegenerations == nil && defaults.MaxRegenerations != nil {
		result.MaxRegenerations = intPtr(*defaults.MaxRegenerations)
	}
	if result.SearchResults == 0 {
		result.SearchResults = defaults.SearchResults
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bools cannot distinguish unset from false; true wins from either side
	result.UseBrowser = result.UseBrowser || defaults.UseBrowser
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// Regenerations returns the configured regeneration cap, or the default when unset.
func (c *Config) Regenerations() int {
	if c.MaxRegenerations == nil {
		return DefaultMaxRegenerations
	}
	return *c.MaxRegenerations
}

// Addr returns the listen address for the configured port.
func (c *Config) Addr() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return ":" + strconv.Itoa(port)
}

func mergeString(dst *string, fallback string) {
	if *dst == "" {
		*dst = fallback
	}
}

func envInt(key string) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func envIntPtr(key string) *int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}

func intPtr(n int) *int {
	return &n
}

func envBool(key string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && b
}

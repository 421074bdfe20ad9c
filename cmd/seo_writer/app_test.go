package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/seo-writer/internal/config"
	"github.com/jonathan/seo-writer/internal/db/sqlite"
	"github.com/jonathan/seo-writer/internal/generation"
	"github.com/jonathan/seo-writer/internal/status"
	"github.com/jonathan/seo-writer/internal/types"
)

// isolateEnv clears every variable config.FromEnv reads so a local .env cannot leak into tests
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "GEMINI_MODEL", "DATABASE_URL", "SQLITE_PATH",
		"SERVICE_NAME", "SERVICE_DESCRIPTION", "SERVICE_URL",
		"MAX_REGENERATIONS", "SEARCH_RESULTS_COUNT", "CONTENT_LANGUAGE", "CONTENT_TONE",
		"PORT", "USE_BROWSER", "VERBOSE",
	} {
		t.Setenv(key, "")
	}

	oldConfig := configPath
	t.Cleanup(func() { configPath = oldConfig })
	configPath = ""
}

func TestResolveConfig_Layering(t *testing.T) {
	isolateEnv(t)
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("MAX_REGENERATIONS", "5")

	file := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"api_key": "file-key",
		"tone": "formal",
		"language": "Korean",
		"service_name": "GrowBox"
	}`), 0644))
	configPath = file

	oldTone := tone
	t.Cleanup(func() { tone = oldTone })
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&tone, "tone", "", "")
	require.NoError(t, cmd.ParseFlags([]string{"--tone", "casual"}))

	cfg, err := resolveConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.APIKey, "environment beats config file")
	assert.Equal(t, 5, cfg.Regenerations())
	assert.Equal(t, "casual", cfg.Tone, "flags beat everything")
	assert.Equal(t, "Korean", cfg.Language, "config file beats defaults")
	assert.Equal(t, "GrowBox", cfg.ServiceName)
	assert.Equal(t, config.DefaultSearchResults, cfg.SearchResults)
	assert.Equal(t, config.DefaultSQLitePath, cfg.SQLitePath)
}

func TestResolveConfig_InvalidFile(t *testing.T) {
	isolateEnv(t)

	file := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"max_regenerations": 99}`), 0644))
	configPath = file

	_, err := resolveConfig(&cobra.Command{Use: "test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxRegenerations")
}

func TestNewOrchestrator_RequiresAPIKeyForGeneration(t *testing.T) {
	cfg := config.Defaults()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "seo.db")

	_, _, err := newOrchestrator(context.Background(), cfg, status.New(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestNewOrchestrator_ReadOnly(t *testing.T) {
	cfg := config.Defaults()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "seo.db")
	ctx := context.Background()

	orch, cleanup, err := newOrchestrator(ctx, cfg, status.New(), false)
	require.NoError(t, err)
	defer cleanup()

	_, err = orch.Load(ctx, "missing")
	var notFound *generation.NotFoundError
	assert.True(t, errors.As(err, &notFound))

	history, err := orch.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Equal(t, config.DefaultMaxRegenerations, orch.MaxRegenerations())
}

func seedSession(t *testing.T, path string) string {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	id, err := store.CreateSession(ctx, "indoor gardening",
		[]types.SourceRef{{URL: "https://a.example.com", Title: "Guide A"}}, "analysis text")
	require.NoError(t, err)
	_, err = store.SaveGeneration(ctx, id, 1, &types.Article{
		Title:           "Indoor Gardening 101",
		MetaDescription: "Grow at home",
		Content:         "<h2>Light</h2><p>Use a south window.</p>",
		Tags:            []string{"gardening"},
	})
	require.NoError(t, err)
	return id
}

func TestLoadAndHistoryCommands(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "seo.db")
	t.Setenv("SQLITE_PATH", path)
	sessionID := seedSession(t, path)

	var out bytes.Buffer
	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(&out)

	require.NoError(t, runHistory(cmd, nil))
	assert.Contains(t, out.String(), "indoor gardening  (1 sessions")
	assert.Contains(t, out.String(), "Indoor Gardening 101")

	out.Reset()
	require.NoError(t, runLoad(cmd, []string{sessionID}))
	assert.Contains(t, out.String(), "GENERATED ARTICLE")
	assert.Contains(t, out.String(), "Use a south window.")
	assert.Contains(t, out.String(), "https://a.example.com")
	assert.Contains(t, out.String(), "Session: "+sessionID)
}

func TestPrintResult_JSON(t *testing.T) {
	var out bytes.Buffer
	result := &generation.Result{
		SessionID: "s1",
		Keyword:   "k",
		Version:   2,
		Article:   &types.Article{Title: "T", Tags: []string{"a", "b"}},
	}

	require.NoError(t, printResult(&out, result, true, false))

	var decoded generation.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "s1", decoded.SessionID)
	assert.Equal(t, 2, decoded.Version)
	assert.Equal(t, []string{"a", "b"}, decoded.Article.Tags)
}

func TestPrintResult_ShowAnalysis(t *testing.T) {
	var out bytes.Buffer
	result := &generation.Result{Keyword: "k", Version: 1, Analysis: "Competitors use listicles", Article: &types.Article{Title: "T"}}

	require.NoError(t, printResult(&out, result, false, true))
	assert.Contains(t, out.String(), "COMPETITOR ANALYSIS")
	assert.Contains(t, out.String(), "Competitors use listicles")
}

func TestStatusCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/status", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"active":true,"keyword":"gardening","phase":"analyzing"}`))
	}))
	defer srv.Close()

	oldURL, oldWatch := statusServerURL, statusWatch
	t.Cleanup(func() { statusServerURL, statusWatch = oldURL, oldWatch })
	statusServerURL = srv.URL + "/"
	statusWatch = false

	var out bytes.Buffer
	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(&out)

	require.NoError(t, runStatus(cmd, nil))
	assert.Contains(t, out.String(), "Keyword:  gardening")
	assert.Contains(t, out.String(), "Phase:    analyzing")
}

func TestFetchStatus_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := fetchStatus(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "generate", "regenerate", "load", "history", "status"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

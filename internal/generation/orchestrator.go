// Package generation drives the keyword-to-article pipeline and the per-session
// versioning and regeneration cap.
package generation

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/jonathan/seo-writer/internal/crawling"
	"github.com/jonathan/seo-writer/internal/status"
	"github.com/jonathan/seo-writer/internal/types"
)

// Store persists sessions and their versioned generations
type Store interface {
	CreateSession(ctx context.Context, keyword string, searchResults []types.SourceRef, analysis string) (string, error)
	SaveGeneration(ctx context.Context, sessionID string, version int, article *types.Article) (int64, error)
	UpdateFeedback(ctx context.Context, generationID int64, rating types.Rating, feedback string) error
	// GetSession returns the session with generations ordered by version, or nil if missing.
	GetSession(ctx context.Context, sessionID string) (*types.Session, error)
	GetLatestGeneration(ctx context.Context, sessionID string) (*types.Generation, error)
	GetGenerationCount(ctx context.Context, sessionID string) (int, error)
	GetKeywordHistory(ctx context.Context) ([]types.KeywordHistory, error)
}

// Researcher finds and crawls competitor pages for a keyword
type Researcher interface {
	SearchAndCrawl(ctx context.Context, keyword string, onCrawl func(found int)) (*crawling.Corpus, error)
}

// Writer produces analyses and articles
type Writer interface {
	AnalyzeCompetitors(ctx context.Context, corpus *crawling.Corpus) (string, error)
	GenerateSEOContent(ctx context.Context, keyword, analysis string) (*types.Article, error)
	RegenerateWithFeedback(ctx context.Context, keyword, analysis string, history []types.Generation) (*types.Article, error)
}

// Result is what every pipeline operation hands back to the caller
type Result struct {
	SessionID     string            `json:"session_id"`
	GenerationID  int64             `json:"generation_id"`
	Keyword       string            `json:"keyword"`
	Version       int               `json:"version"`
	Article       *types.Article    `json:"article"`
	Analysis      string            `json:"analysis"`
	SearchResults []types.SourceRef `json:"search_results"`
	Rating        *types.Rating     `json:"rating,omitempty"`
	Feedback      *string           `json:"feedback,omitempty"`
	MaxReached    bool              `json:"max_reached"`
}

// RegenerateRequest carries the user's verdict on the displayed generation
type RegenerateRequest struct {
	SessionID string
	// GenerationID is the displayed generation; zero means the latest one
	GenerationID int64
	Rating       string
	Feedback     string
}

// Options configures an Orchestrator
type Options struct {
	// MaxRegenerations is how many versions may follow v1; zero disables regeneration
	MaxRegenerations int
	Verbose          bool
}

// Orchestrator runs generate/regenerate/load against its collaborators.
// At most one generate or regenerate runs at a time per status reporter.
type Orchestrator struct {
	store      Store
	researcher Researcher
	writer     Writer
	status     *status.Reporter
	maxRegen   int
	verbose    bool
}

// New creates an orchestrator. A nil reporter gets a private one.
func New(store Store, researcher Researcher, writer Writer, reporter *status.Reporter, opts Options) *Orchestrator {
	if reporter == nil {
		reporter = status.New()
	}
	maxRegen := max(opts.MaxRegenerations, 0)
	return &Orchestrator{
		store:      store,
		researcher: researcher,
		writer:     writer,
		status:     reporter,
		maxRegen:   maxRegen,
		verbose:    opts.Verbose,
	}
}

// MaxRegenerations returns the configured cap.
func (o *Orchestrator) MaxRegenerations() int {
	return o.maxRegen
}

// Generate runs the full pipeline for a keyword and persists a new session at version 1.
func (o *Orchestrator) Generate(ctx context.Context, keyword string) (*Result, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, &ValidationError{Field: "keyword", Message: "keyword is required"}
	}

	if err := o.status.TryAcquire(keyword, status.PhaseSearching); err != nil {
		return nil, err
	}
	defer o.status.Release()

	o.logf("[GENERATE] Searching for %q", keyword)
	corpus, err := o.researcher.SearchAndCrawl(ctx, keyword, func(found int) {
		o.logf("[GENERATE] Crawling %d results for %q", found, keyword)
		o.status.SetPhase(status.PhaseCrawling)
	})
	if err != nil {
		return nil, &PipelineError{Stage: StageSearch, Cause: err}
	}
	if len(corpus.Results) == 0 {
		return nil, &NoResultsError{Keyword: keyword}
	}

	o.status.SetPhase(status.PhaseAnalyzing)
	o.logf("[GENERATE] Analyzing %d pages for %q", len(corpus.Results), keyword)
	analysis, err := o.writer.AnalyzeCompetitors(ctx, corpus)
	if err != nil {
		return nil, &PipelineError{Stage: StageAnalysis, Cause: err}
	}

	o.status.SetPhase(status.PhaseGenerating)
	o.logf("[GENERATE] Writing article for %q", keyword)
	article, err := o.writer.GenerateSEOContent(ctx, keyword, analysis)
	if err != nil {
		return nil, &PipelineError{Stage: StageGeneration, Cause: err}
	}

	sources := corpus.Sources()
	sessionID, err := o.store.CreateSession(ctx, keyword, sources, analysis)
	if err != nil {
		return nil, &PipelineError{Stage: StagePersist, Cause: err}
	}
	// A failure here leaves a session with zero generations; Load reports it as not found.
	generationID, err := o.store.SaveGeneration(ctx, sessionID, 1, article)
	if err != nil {
		return nil, &PipelineError{Stage: StagePersist, Cause: err}
	}

	log.Printf("[GENERATE] Saved session %s v1 for %q", sessionID, keyword)
	return &Result{
		SessionID:     sessionID,
		GenerationID:  generationID,
		Keyword:       keyword,
		Version:       1,
		Article:       article,
		Analysis:      analysis,
		SearchResults: sources,
		MaxReached:    1 > o.maxRegen,
	}, nil
}

// Regenerate records the user's rating and feedback on the displayed generation and
// writes the next version using the whole session history.
// Feedback is written before the new version is produced; if that later step fails the
// feedback stays recorded without a new version.
func (o *Orchestrator) Regenerate(ctx context.Context, req RegenerateRequest) (*Result, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return nil, &ValidationError{Field: "session_id", Message: "session id is required"}
	}
	rating, err := types.ParseRating(strings.TrimSpace(req.Rating))
	if err != nil {
		return nil, &ValidationError{Field: "rating", Message: err.Error()}
	}

	if err := o.checkCap(ctx, sessionID); err != nil {
		return nil, err
	}

	session, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, &PipelineError{Stage: StageLoad, Cause: err}
	}
	if session == nil {
		return nil, &NotFoundError{Resource: "session", ID: sessionID}
	}

	if err := o.status.TryAcquire(session.Keyword, status.PhaseGenerating); err != nil {
		return nil, err
	}
	defer o.status.Release()

	// Cap re-check under the guard
	count, err := o.store.GetGenerationCount(ctx, sessionID)
	if err != nil {
		return nil, &PipelineError{Stage: StageLoad, Cause: err}
	}
	if count >= o.maxRegen+1 {
		return nil, &LimitExceededError{Max: o.maxRegen}
	}

	displayed := session.Latest()
	if req.GenerationID != 0 {
		displayed = session.Generation(req.GenerationID)
	}
	if displayed == nil {
		id := strconv.FormatInt(req.GenerationID, 10)
		if req.GenerationID == 0 {
			id = "latest"
		}
		return nil, &NotFoundError{Resource: "generation", ID: id}
	}

	if err := o.store.UpdateFeedback(ctx, displayed.ID, rating, req.Feedback); err != nil {
		return nil, &PipelineError{Stage: StageFeedback, Cause: err}
	}

	reloaded, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, &PipelineError{Stage: StageLoad, Cause: err}
	}
	if reloaded == nil {
		return nil, &NotFoundError{Resource: "session", ID: sessionID}
	}

	o.logf("[REGENERATE] Writing v%d for %q with %d prior versions", count+1, session.Keyword, len(reloaded.Generations))
	article, err := o.writer.RegenerateWithFeedback(ctx, session.Keyword, session.Analysis, reloaded.Generations)
	if err != nil {
		return nil, &PipelineError{Stage: StageGeneration, Cause: err}
	}

	version := count + 1
	generationID, err := o.store.SaveGeneration(ctx, sessionID, version, article)
	if err != nil {
		return nil, &PipelineError{Stage: StagePersist, Cause: err}
	}

	log.Printf("[REGENERATE] Saved session %s v%d for %q", sessionID, version, session.Keyword)
	return &Result{
		SessionID:     sessionID,
		GenerationID:  generationID,
		Keyword:       session.Keyword,
		Version:       version,
		Article:       article,
		Analysis:      session.Analysis,
		SearchResults: session.SearchResults,
		MaxReached:    version > o.maxRegen,
	}, nil
}

// checkCap rejects a regeneration before any work once the session is at its cap.
func (o *Orchestrator) checkCap(ctx context.Context, sessionID string) error {
	count, err := o.store.GetGenerationCount(ctx, sessionID)
	if err != nil {
		return &PipelineError{Stage: StageLoad, Cause: err}
	}
	if count >= o.maxRegen+1 {
		return &LimitExceededError{Max: o.maxRegen}
	}
	return nil
}

// Load returns a session's latest generation. It never mutates state.
func (o *Orchestrator) Load(ctx context.Context, sessionID string) (*Result, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, &ValidationError{Field: "session_id", Message: "session id is required"}
	}

	session, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, &PipelineError{Stage: StageLoad, Cause: err}
	}
	if session == nil {
		return nil, &NotFoundError{Resource: "session", ID: sessionID}
	}

	latest, err := o.store.GetLatestGeneration(ctx, sessionID)
	if err != nil {
		return nil, &PipelineError{Stage: StageLoad, Cause: err}
	}
	if latest == nil {
		return nil, &NotFoundError{Resource: "generation", ID: "latest"}
	}

	return &Result{
		SessionID:     session.ID,
		GenerationID:  latest.ID,
		Keyword:       session.Keyword,
		Version:       latest.Version,
		Article:       latest.Article(),
		Analysis:      session.Analysis,
		SearchResults: session.SearchResults,
		Rating:        latest.Rating,
		Feedback:      latest.Feedback,
		MaxReached:    latest.Version > o.maxRegen,
	}, nil
}

// History lists past sessions grouped by keyword, newest first.
func (o *Orchestrator) History(ctx context.Context) ([]types.KeywordHistory, error) {
	history, err := o.store.GetKeywordHistory(ctx)
	if err != nil {
		return nil, &PipelineError{Stage: StageLoad, Cause: err}
	}
	return history, nil
}

// Status returns a snapshot of the global generation status.
func (o *Orchestrator) Status() status.Status {
	return o.status.Snapshot()
}

// Reporter exposes the status reporter for streaming.
func (o *Orchestrator) Reporter() *status.Reporter {
	return o.status
}

func (o *Orchestrator) logf(format string, args ...any) {
	if o.verbose {
		log.Printf(format, args...)
	}
}

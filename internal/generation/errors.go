package generation

import "fmt"

// Stage names used in PipelineError
const (
	StageSearch     = "search"
	StageAnalysis   = "analysis"
	StageGeneration = "generation"
	StagePersist    = "persist"
	StageFeedback   = "feedback"
	StageLoad       = "load"
)

// ValidationError is a rejected request; nothing was changed
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NoResultsError means search and crawl produced no usable pages
type NoResultsError struct {
	Keyword string
}

func (e *NoResultsError) Error() string {
	return fmt.Sprintf("no search results could be crawled for keyword %q; try a different keyword", e.Keyword)
}

// LimitExceededError rejects a regeneration once the session reached its cap
type LimitExceededError struct {
	Max int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("regeneration limit reached: at most %d regenerations per session", e.Max)
}

// NotFoundError is returned for unknown sessions or generations
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// PipelineError wraps an upstream failure at a given stage
type PipelineError struct {
	Stage string
	Cause error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("content generation failed during %s: %v", e.Stage, e.Cause)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

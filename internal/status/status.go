// Package status tracks the single in-flight generation pipeline for the process.
package status

import (
	"fmt"
	"sync"
)

// Phase is a pipeline stage reported while a generation is in flight.
type Phase string

// Phase constants
const (
	PhaseSearching  Phase = "searching"
	PhaseCrawling   Phase = "crawling"
	PhaseAnalyzing  Phase = "analyzing"
	PhaseGenerating Phase = "generating"
)

// Status is a point-in-time snapshot of the global generation status.
type Status struct {
	Active  bool   `json:"active"`
	Keyword string `json:"keyword,omitempty"`
	Phase   Phase  `json:"phase,omitempty"`
}

// BusyError is returned when a pipeline is already in flight.
type BusyError struct {
	Keyword string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("content is currently being generated for keyword %q; try again when it finishes", e.Keyword)
}

// Reporter holds the process-wide generation status. At most one holder may be active.
// The zero value is ready to use.
type Reporter struct {
	mu      sync.RWMutex
	current Status
	version uint64
}

// New creates an inactive reporter.
func New() *Reporter {
	return &Reporter{}
}

// TryAcquire marks a pipeline as in flight for keyword. It never blocks: if another
// pipeline holds the reporter it returns a *BusyError naming the in-flight keyword.
// A successful acquire must be paired with Release, typically via defer.
func (r *Reporter) TryAcquire(keyword string, phase Phase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current.Active {
		return &BusyError{Keyword: r.current.Keyword}
	}
	r.current = Status{Active: true, Keyword: keyword, Phase: phase}
	r.version++
	return nil
}

// SetPhase records a stage transition for the in-flight pipeline. No-op when inactive.
func (r *Reporter) SetPhase(phase Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.current.Active || r.current.Phase == phase {
		return
	}
	r.current.Phase = phase
	r.version++
}

// Release clears the status back to inactive.
func (r *Reporter) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.current.Active {
		return
	}
	r.current = Status{}
	r.version++
}

// Snapshot returns a copy of the current status.
func (r *Reporter) Snapshot() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Version returns a counter that changes on every status transition.
// Streaming clients compare it to detect changes without diffing snapshots.
func (r *Reporter) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

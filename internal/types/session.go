package types

import (
	"fmt"
	"time"
)

// Rating is the user's verdict on a generation.
type Rating string

// Rating constants
const (
	RatingGood Rating = "good"
	RatingBad  Rating = "bad"
)

// ParseRating parses a rating from user input. An empty string defaults to RatingBad.
func ParseRating(s string) (Rating, error) {
	switch Rating(s) {
	case "":
		return RatingBad, nil
	case RatingGood, RatingBad:
		return Rating(s), nil
	default:
		return "", fmt.Errorf("invalid rating %q: must be %q or %q", s, RatingGood, RatingBad)
	}
}

// Session is one keyword-driven generation lineage.
type Session struct {
	ID            string       `json:"id"`
	Keyword       string       `json:"keyword"`
	SearchResults []SourceRef  `json:"search_results"`
	Analysis      string       `json:"analysis"`
	CreatedAt     time.Time    `json:"created_at"`
	Generations   []Generation `json:"generations"` // ordered by version ascending
}

// Latest returns the generation with the highest version, or nil when there is none.
func (s *Session) Latest() *Generation {
	if s == nil || len(s.Generations) == 0 {
		return nil
	}
	latest := &s.Generations[0]
	for i := range s.Generations {
		if s.Generations[i].Version > latest.Version {
			latest = &s.Generations[i]
		}
	}
	return latest
}

// Generation finds a generation by ID within the session.
func (s *Session) Generation(id int64) *Generation {
	if s == nil {
		return nil
	}
	for i := range s.Generations {
		if s.Generations[i].ID == id {
			return &s.Generations[i]
		}
	}
	return nil
}

// Generation is one versioned draft within a session.
type Generation struct {
	ID              int64     `json:"id"`
	SessionID       string    `json:"session_id"`
	Version         int       `json:"version"`
	Title           string    `json:"title"`
	MetaDescription string    `json:"meta_description"`
	Content         string    `json:"content"`
	Tags            []string  `json:"tags"`
	Rating          *Rating   `json:"rating,omitempty"`
	Feedback        *string   `json:"feedback,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Article returns the generated artifact stored on the generation.
func (g *Generation) Article() *Article {
	tags := make([]string, len(g.Tags))
	copy(tags, g.Tags)
	return &Article{
		Title:           g.Title,
		MetaDescription: g.MetaDescription,
		Content:         g.Content,
		Tags:            tags,
	}
}

// SessionSummary is a lightweight view of a session for history listings.
type SessionSummary struct {
	ID        string    `json:"id"`
	Version   int       `json:"version"` // latest version in the session
	CreatedAt time.Time `json:"created_at"`
}

// KeywordHistory aggregates all sessions generated for one keyword.
type KeywordHistory struct {
	Keyword      string           `json:"keyword"`
	SessionCount int              `json:"session_count"`
	LatestTitle  string           `json:"latest_title"`
	LatestDate   time.Time        `json:"latest_date"`
	Sessions     []SessionSummary `json:"sessions"`
}

// HistoryRow is one session joined with its latest generation, newest session first.
// Stores produce these rows and GroupHistory folds them into KeywordHistory entries.
type HistoryRow struct {
	SessionID        string
	Keyword          string
	SessionCreatedAt time.Time
	LatestTitle      *string
	LatestVersion    *int
	LatestCreatedAt  *time.Time
}

// GroupHistory folds session rows (ordered newest first) into per-keyword history,
// preserving the order in which keywords first appear.
func GroupHistory(rows []HistoryRow) []KeywordHistory {
	index := make(map[string]int)
	history := make([]KeywordHistory, 0)

	for _, row := range rows {
		version := 1
		if row.LatestVersion != nil {
			version = *row.LatestVersion
		}
		summary := SessionSummary{
			ID:        row.SessionID,
			Version:   version,
			CreatedAt: row.SessionCreatedAt,
		}

		if i, ok := index[row.Keyword]; ok {
			history[i].SessionCount++
			history[i].Sessions = append(history[i].Sessions, summary)
			continue
		}

		entry := KeywordHistory{
			Keyword:      row.Keyword,
			SessionCount: 1,
			LatestDate:   row.SessionCreatedAt,
			Sessions:     []SessionSummary{summary},
		}
		if row.LatestTitle != nil {
			entry.LatestTitle = *row.LatestTitle
		}
		if row.LatestCreatedAt != nil {
			entry.LatestDate = *row.LatestCreatedAt
		}
		index[row.Keyword] = len(history)
		history = append(history, entry)
	}

	return history
}

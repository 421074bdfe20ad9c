package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/seo-writer/internal/types"
)

const generationColumns = `id, session_id, version, title, meta_description, content, tags, rating, feedback, created_at`

// CreateSession inserts a new session and returns its ID
func (db *DB) CreateSession(ctx context.Context, keyword string, searchResults []types.SourceRef, analysis string) (string, error) {
	if searchResults == nil {
		searchResults = []types.SourceRef{}
	}
	resultsJSON, err := json.Marshal(searchResults)
	if err != nil {
		return "", fmt.Errorf("failed to marshal search results: %w", err)
	}

	id := uuid.NewString()
	_, err = db.pool.Exec(ctx,
		`INSERT INTO sessions (id, keyword, search_results, analysis)
		 VALUES ($1, $2, $3, $4)`,
		id, keyword, string(resultsJSON), analysis,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}

// SaveGeneration stores an article as the given version of a session
func (db *DB) SaveGeneration(ctx context.Context, sessionID string, version int, article *types.Article) (int64, error) {
	tags := article.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal tags: %w", err)
	}

	var id int64
	err = db.pool.QueryRow(ctx,
		`INSERT INTO generations (session_id, version, title, meta_description, content, tags)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		sessionID, version, article.Title, article.MetaDescription, article.Content, string(tagsJSON),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save generation v%d: %w", version, err)
	}
	return id, nil
}

// UpdateFeedback records a rating and feedback on a generation
func (db *DB) UpdateFeedback(ctx context.Context, generationID int64, rating types.Rating, feedback string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE generations SET rating = $1, feedback = $2 WHERE id = $3`,
		string(rating), feedback, generationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update feedback: %w", err)
	}
	return nil
}

// GetSession retrieves a session with all generations ordered by version.
// Returns nil, nil when the session does not exist.
func (db *DB) GetSession(ctx context.Context, sessionID string) (*types.Session, error) {
	var session types.Session
	var resultsJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, keyword, search_results, analysis, created_at
		 FROM sessions WHERE id = $1`,
		sessionID,
	).Scan(&session.ID, &session.Keyword, &resultsJSON, &session.Analysis, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if err := json.Unmarshal(resultsJSON, &session.SearchResults); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+generationColumns+`
		 FROM generations WHERE session_id = $1
		 ORDER BY version ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer rows.Close()

	session.Generations = make([]types.Generation, 0)
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		session.Generations = append(session.Generations, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate generations: %w", err)
	}

	return &session, nil
}

// GetLatestGeneration returns the highest version of a session, or nil when it has none
func (db *DB) GetLatestGeneration(ctx context.Context, sessionID string) (*types.Generation, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+generationColumns+`
		 FROM generations WHERE session_id = $1
		 ORDER BY version DESC LIMIT 1`,
		sessionID,
	)
	g, err := scanGeneration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return g, nil
}

// GetGenerationCount returns how many generations a session has
func (db *DB) GetGenerationCount(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM generations WHERE session_id = $1`,
		sessionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count generations: %w", err)
	}
	return count, nil
}

// GetKeywordHistory lists sessions grouped by keyword, newest first
func (db *DB) GetKeywordHistory(ctx context.Context) ([]types.KeywordHistory, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT s.id, s.keyword, s.created_at, g.title, g.version, g.created_at
		 FROM sessions s
		 LEFT JOIN generations g
		   ON g.session_id = s.id
		  AND g.version = (SELECT MAX(version) FROM generations WHERE session_id = s.id)
		 ORDER BY s.created_at DESC, s.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var history []types.HistoryRow
	for rows.Next() {
		var row types.HistoryRow
		if err := rows.Scan(&row.SessionID, &row.Keyword, &row.SessionCreatedAt,
			&row.LatestTitle, &row.LatestVersion, &row.LatestCreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		history = append(history, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return types.GroupHistory(history), nil
}

// scanGeneration reads one row selected with generationColumns
func scanGeneration(row pgx.Row) (*types.Generation, error) {
	var g types.Generation
	var tagsJSON []byte
	var rating *string
	err := row.Scan(&g.ID, &g.SessionID, &g.Version, &g.Title, &g.MetaDescription,
		&g.Content, &tagsJSON, &rating, &g.Feedback, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan generation: %w", err)
	}

	if err := json.Unmarshal(tagsJSON, &g.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if rating != nil {
		r := types.Rating(*rating)
		g.Rating = &r
	}
	return &g, nil
}

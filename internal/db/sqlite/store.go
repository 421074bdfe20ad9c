// Package sqlite provides a single-file SQLite store for sessions and generations.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jonathan/seo-writer/internal/types"
)

// DefaultPath is where the database file lives when none is configured
const DefaultPath = "data/seo.db"

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

const generationColumns = `id, session_id, version, title, meta_description, content, tags, rating, feedback, created_at`

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	keyword TEXT NOT NULL,
	search_results TEXT NOT NULL DEFAULT '[]',
	analysis TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS generations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	version INTEGER NOT NULL CHECK (version >= 1),
	title TEXT NOT NULL,
	meta_description TEXT NOT NULL,
	content TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	rating TEXT CHECK (rating IN ('good', 'bad')),
	feedback TEXT,
	created_at TIMESTAMP NOT NULL,
	UNIQUE (session_id, version)
);

CREATE INDEX IF NOT EXISTS idx_generations_session ON generations(session_id, version);
`

// Store wraps SQLite database operations
type Store struct {
	db *sql.DB
}

// Open opens or creates a SQLite database and applies the schema
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection serializes writes and keeps an in-memory database alive
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if path != MemoryPath {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSession inserts a new session and returns its ID
func (s *Store) CreateSession(ctx context.Context, keyword string, searchResults []types.SourceRef, analysis string) (string, error) {
	if searchResults == nil {
		searchResults = []types.SourceRef{}
	}
	resultsJSON, err := json.Marshal(searchResults)
	if err != nil {
		return "", fmt.Errorf("marshal search results: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, keyword, search_results, analysis, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, keyword, string(resultsJSON), analysis, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// SaveGeneration stores an article as the given version of a session
func (s *Store) SaveGeneration(ctx context.Context, sessionID string, version int, article *types.Article) (int64, error) {
	tags := article.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return 0, fmt.Errorf("marshal tags: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO generations (session_id, version, title, meta_description, content, tags, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, version, article.Title, article.MetaDescription, article.Content, string(tagsJSON), time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("save generation v%d: %w", version, err)
	}
	return res.LastInsertId()
}

// UpdateFeedback records a rating and feedback on a generation
func (s *Store) UpdateFeedback(ctx context.Context, generationID int64, rating types.Rating, feedback string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE generations SET rating = ?, feedback = ? WHERE id = ?`,
		string(rating), feedback, generationID,
	)
	if err != nil {
		return fmt.Errorf("update feedback: %w", err)
	}
	return nil
}

// GetSession retrieves a session with all generations ordered by version.
// Returns nil, nil when the session does not exist.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*types.Session, error) {
	var session types.Session
	var resultsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, keyword, search_results, analysis, created_at FROM sessions WHERE id = ?`,
		sessionID,
	).Scan(&session.ID, &session.Keyword, &resultsJSON, &session.Analysis, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if err := json.Unmarshal([]byte(resultsJSON), &session.SearchResults); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+generationColumns+` FROM generations WHERE session_id = ? ORDER BY version ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	session.Generations = make([]types.Generation, 0)
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		session.Generations = append(session.Generations, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}

	return &session, nil
}

// GetLatestGeneration returns the highest version of a session, or nil when it has none
func (s *Store) GetLatestGeneration(ctx context.Context, sessionID string) (*types.Generation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+generationColumns+` FROM generations WHERE session_id = ? ORDER BY version DESC LIMIT 1`,
		sessionID,
	)
	g, err := scanGeneration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return g, err
}

// GetGenerationCount returns how many generations a session has
func (s *Store) GetGenerationCount(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM generations WHERE session_id = ?`,
		sessionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count generations: %w", err)
	}
	return count, nil
}

// GetKeywordHistory lists sessions grouped by keyword, newest first
func (s *Store) GetKeywordHistory(ctx context.Context) ([]types.KeywordHistory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.keyword, s.created_at, g.title, g.version, g.created_at
		 FROM sessions s
		 LEFT JOIN generations g
		   ON g.session_id = s.id
		  AND g.version = (SELECT MAX(version) FROM generations WHERE session_id = s.id)
		 ORDER BY s.rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var history []types.HistoryRow
	for rows.Next() {
		var row types.HistoryRow
		var title sql.NullString
		var version sql.NullInt64
		var createdAt sql.NullTime
		if err := rows.Scan(&row.SessionID, &row.Keyword, &row.SessionCreatedAt, &title, &version, &createdAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if title.Valid {
			row.LatestTitle = &title.String
		}
		if version.Valid {
			v := int(version.Int64)
			row.LatestVersion = &v
		}
		if createdAt.Valid {
			row.LatestCreatedAt = &createdAt.Time
		}
		history = append(history, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return types.GroupHistory(history), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row scanner) (*types.Generation, error) {
	var g types.Generation
	var tagsJSON string
	var rating, feedback sql.NullString
	err := row.Scan(&g.ID, &g.SessionID, &g.Version, &g.Title, &g.MetaDescription,
		&g.Content, &tagsJSON, &rating, &feedback, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan generation: %w", err)
	}

	if err := json.Unmarshal([]byte(tagsJSON), &g.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if rating.Valid {
		r := types.Rating(rating.String)
		g.Rating = &r
	}
	if feedback.Valid {
		g.Feedback = &feedback.String
	}
	return &g, nil
}

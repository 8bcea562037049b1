// Package history implements the local-first prompt history: a durable
// sqlite cache that answers reads immediately, mirrored best-effort to
// Postgres and periodically overwritten by a full remote reconciliation.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jmoellers/insightdeck/internal/models"
)

// LocalStore is the durable on-disk side of the cache.
type LocalStore struct {
	db *sql.DB
}

// OpenLocal opens (or creates) the cache database in dataDir. Pass
// ":memory:" as dataDir for an in-memory database (used by tests).
func OpenLocal(dataDir string) (*LocalStore, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "history.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging cache database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &LocalStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

func (s *LocalStore) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS prompt_history (
		id TEXT PRIMARY KEY,
		prompt TEXT NOT NULL,
		sql_query TEXT NOT NULL DEFAULT '',
		timestamp DATETIME NOT NULL,
		execution_time INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		result_count INTEGER NOT NULL DEFAULT 0,
		chart_types TEXT NOT NULL DEFAULT '[]',
		is_favorite INTEGER NOT NULL DEFAULT 0,
		tags TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`)
	return err
}

// Insert writes one item.
func (s *LocalStore) Insert(item *models.PromptHistoryItem) error {
	const q = `
		INSERT INTO prompt_history
			(id, prompt, sql_query, timestamp, execution_time, status, result_count, chart_types, is_favorite, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(q,
		item.ID, item.Prompt, item.SQLQuery, item.Timestamp.UTC().Format(time.RFC3339Nano),
		item.ExecutionTime, item.Status, item.ResultCount,
		encodeList(item.ChartTypes), boolToInt(item.IsFavorite), encodeList(item.Tags),
		item.CreatedAt.UTC().Format(time.RFC3339Nano), item.UpdatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// Update rewrites the mutable fields of one item.
func (s *LocalStore) Update(item *models.PromptHistoryItem) error {
	const q = `
		UPDATE prompt_history
		SET status = ?, execution_time = ?, result_count = ?, chart_types = ?, is_favorite = ?, tags = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := s.db.Exec(q,
		item.Status, item.ExecutionTime, item.ResultCount,
		encodeList(item.ChartTypes), boolToInt(item.IsFavorite), encodeList(item.Tags),
		item.UpdatedAt.UTC().Format(time.RFC3339Nano), item.ID)
	return err
}

// Delete removes one item by id.
func (s *LocalStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM prompt_history WHERE id = ?`, id)
	return err
}

// Clear removes everything.
func (s *LocalStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM prompt_history`)
	return err
}

// ReplaceAll swaps the whole cache content for the given items in one
// transaction. Used by the periodic reconciliation.
func (s *LocalStore) ReplaceAll(items []models.PromptHistoryItem) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM prompt_history`); err != nil {
		_ = tx.Rollback()
		return err
	}

	const q = `
		INSERT INTO prompt_history
			(id, prompt, sql_query, timestamp, execution_time, status, result_count, chart_types, is_favorite, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i := range items {
		item := &items[i]
		if _, err := tx.Exec(q,
			item.ID, item.Prompt, item.SQLQuery, item.Timestamp.UTC().Format(time.RFC3339Nano),
			item.ExecutionTime, item.Status, item.ResultCount,
			encodeList(item.ChartTypes), boolToInt(item.IsFavorite), encodeList(item.Tags),
			item.CreatedAt.UTC().Format(time.RFC3339Nano), item.UpdatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// LoadAll returns every cached item, newest first.
func (s *LocalStore) LoadAll() ([]models.PromptHistoryItem, error) {
	rows, err := s.db.Query(`
		SELECT id, prompt, sql_query, timestamp, execution_time, status, result_count, chart_types, is_favorite, tags, created_at, updated_at
		FROM prompt_history
		ORDER BY timestamp DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PromptHistoryItem
	for rows.Next() {
		var item models.PromptHistoryItem
		var ts, createdAt, updatedAt string
		var chartTypes, tags string
		var favorite int
		if err := rows.Scan(&item.ID, &item.Prompt, &item.SQLQuery, &ts, &item.ExecutionTime,
			&item.Status, &item.ResultCount, &chartTypes, &favorite, &tags, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		item.Timestamp = parseTime(ts)
		item.CreatedAt = parseTime(createdAt)
		item.UpdatedAt = parseTime(updatedAt)
		item.ChartTypes = decodeList(chartTypes)
		item.Tags = decodeList(tags)
		item.IsFavorite = favorite != 0
		out = append(out, item)
	}
	return out, rows.Err()
}

func encodeList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return string(b)
}

func decodeList(s string) []string {
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err != nil || list == nil {
		return []string{}
	}
	return list
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

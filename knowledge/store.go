/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
	_ "modernc.org/sqlite"
)

// Fact is one remembered piece of free text. Facts are append-only and are
// never mutated or deleted by the agent.
type Fact struct {
	ID        int64
	Content   string
	Category  string
	CreatedAt time.Time
}

// WorkItem is a unit of pending work. Items carry stable identifiers so that
// completion can name an item rather than a position in a shifting list.
type WorkItem struct {
	ID          int64
	Description string
}

// Store is a SQLite-backed knowledge store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the store at path.
func Open(path string) (*Store, error) {
	p := filepath.Clean(strings.TrimSpace(path))
	if p == "" {
		return nil, errors.New("missing db path")
	}
	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// modernc sqlite is happiest with a single writer connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
PRAGMA journal_mode = WAL;
CREATE TABLE IF NOT EXISTS facts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  content TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT '',
  created_at_unix_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_facts_created ON facts(created_at_unix_ms DESC);
CREATE TABLE IF NOT EXISTS work_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  description TEXT NOT NULL,
  state TEXT NOT NULL DEFAULT 'pending',
  created_at_unix_ms INTEGER NOT NULL,
  completed_at_unix_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_work_items_state ON work_items(state, id);
`)
	return err
}

// AppendFact records a new fact. Category may be empty.
func (s *Store) AppendFact(ctx context.Context, content, category string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return errors.New("empty fact")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO facts (content, category, created_at_unix_ms) VALUES (?, ?, ?)`,
		content, strings.TrimSpace(category), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("inserting fact: %w", err)
	}
	return nil
}

// RecentFacts returns up to limit facts, newest first. Fails soft.
func (s *Store) RecentFacts(ctx context.Context, limit int) []Fact {
	if limit <= 0 {
		return nil
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, content, category, created_at_unix_ms
FROM facts ORDER BY created_at_unix_ms DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		clog.FromContext(ctx).With("error", err).Warn("Listing recent facts failed")
		return nil
	}
	defer rows.Close()
	return scanFacts(ctx, rows)
}

// SearchFacts returns up to limit facts ranked by how many of the given
// keywords they contain, most matches first. An empty keyword set or a
// backend error yields nil, so callers fall back to RecentFacts.
func (s *Store) SearchFacts(ctx context.Context, keywords []string, limit int) []Fact {
	terms := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			terms = append(terms, kw)
		}
	}
	if len(terms) == 0 || limit <= 0 {
		return nil
	}

	// Score each fact by the number of keywords it contains. The score
	// expression appears in both WHERE and ORDER BY, so the term arguments
	// are passed twice.
	var score strings.Builder
	for i := range terms {
		if i > 0 {
			score.WriteString(" + ")
		}
		score.WriteString("(instr(lower(content), lower(?)) > 0)")
	}
	query := fmt.Sprintf(`
SELECT id, content, category, created_at_unix_ms
FROM facts
WHERE %[1]s > 0
ORDER BY %[1]s DESC, created_at_unix_ms DESC
LIMIT ?`, score.String())

	args := make([]any, 0, 2*len(terms)+1)
	for _, term := range terms {
		args = append(args, term)
	}
	for _, term := range terms {
		args = append(args, term)
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		clog.FromContext(ctx).With("error", err).Warn("Keyword fact search failed")
		return nil
	}
	defer rows.Close()
	return scanFacts(ctx, rows)
}

func scanFacts(ctx context.Context, rows *sql.Rows) []Fact {
	var facts []Fact
	for rows.Next() {
		var f Fact
		var ms int64
		if err := rows.Scan(&f.ID, &f.Content, &f.Category, &ms); err != nil {
			clog.FromContext(ctx).With("error", err).Warn("Scanning fact row failed")
			return nil
		}
		f.CreatedAt = time.UnixMilli(ms)
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		clog.FromContext(ctx).With("error", err).Warn("Iterating fact rows failed")
		return nil
	}
	return facts
}

// AddWorkItem records a new pending work item.
func (s *Store) AddWorkItem(ctx context.Context, description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return errors.New("empty work item")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO work_items (description, state, created_at_unix_ms) VALUES (?, 'pending', ?)`,
		description, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("inserting work item: %w", err)
	}
	return nil
}

// PendingWorkItems returns all pending items in creation order. Fails soft.
func (s *Store) PendingWorkItems(ctx context.Context) []WorkItem {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description FROM work_items WHERE state = 'pending' ORDER BY id`)
	if err != nil {
		clog.FromContext(ctx).With("error", err).Warn("Listing work items failed")
		return nil
	}
	defer rows.Close()

	var items []WorkItem
	for rows.Next() {
		var it WorkItem
		if err := rows.Scan(&it.ID, &it.Description); err != nil {
			clog.FromContext(ctx).With("error", err).Warn("Scanning work item failed")
			return nil
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		clog.FromContext(ctx).With("error", err).Warn("Iterating work items failed")
		return nil
	}
	return items
}

// CompleteWorkItem transitions the identified item from pending to completed.
// It returns the item's description and whether the transition happened; a
// second completion of the same item reports false.
func (s *Store) CompleteWorkItem(ctx context.Context, id int64) (string, bool) {
	var description string
	err := s.db.QueryRowContext(ctx,
		`SELECT description FROM work_items WHERE id = ? AND state = 'pending'`, id).
		Scan(&description)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		clog.FromContext(ctx).With("error", err).With("id", id).Warn("Looking up work item failed")
		return "", false
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE work_items SET state = 'completed', completed_at_unix_ms = ? WHERE id = ? AND state = 'pending'`,
		time.Now().UnixMilli(), id)
	if err != nil {
		clog.FromContext(ctx).With("error", err).With("id", id).Warn("Completing work item failed")
		return "", false
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return "", false
	}
	return description, true
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists search lookups and verification runs in a local
// SQLite database. The lookup table backs the search client's cache so
// repeated runs over the same paper do not hammer the index; the runs
// tables keep a history of past verifications for inspection.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Ad1th/Reference-Halucinations/pkg/types"
)

const dbFile = "refcheck.db"

// Store manages the refcheck SQLite database.
type Store struct {
	db     *sql.DB
	maxAge time.Duration
}

// now is stubbed in tests to exercise cache expiry.
var now = time.Now

// NewStore opens or creates the database at cfg.Dir/refcheck.db, creating
// the schema if needed.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	def := types.DefaultConfig().Store
	dir := cfg.Dir
	if dir == "" {
		dir = def.Dir
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = def.MaxAge
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, maxAge: maxAge}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS lookups (
			query TEXT PRIMARY KEY,
			candidates TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT,
			started_at TEXT NOT NULL,
			total INTEGER,
			verified INTEGER,
			review INTEGER,
			unverified INTEGER,
			suspicious INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			ref_num INTEGER NOT NULL,
			label TEXT NOT NULL,
			status TEXT,
			confidence REAL,
			title TEXT,
			authors TEXT,
			matched_title TEXT,
			corrected_title TEXT,
			source TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run_id ON results(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Get returns the cached candidates for query if present and fresh. It
// implements the search client's cache contract.
func (s *Store) Get(query string) ([]types.Candidate, bool) {
	var candidatesJSON, fetchedAt string
	err := s.db.QueryRow(
		`SELECT candidates, fetched_at FROM lookups WHERE query = ?`, query,
	).Scan(&candidatesJSON, &fetchedAt)
	if err != nil {
		return nil, false
	}

	fetched, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil || now().Sub(fetched) > s.maxAge {
		return nil, false
	}

	var candidates []types.Candidate
	if err := json.Unmarshal([]byte(candidatesJSON), &candidates); err != nil {
		return nil, false
	}
	return candidates, true
}

// Put stores the candidates for query, replacing any stale entry.
func (s *Store) Put(query string, candidates []types.Candidate) error {
	candidatesJSON, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("marshaling candidates: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO lookups (query, candidates, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(query) DO UPDATE SET
			candidates=excluded.candidates, fetched_at=excluded.fetched_at`,
		query, string(candidatesJSON), now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("storing lookup: %w", err)
	}
	return nil
}

// Prune removes expired lookup entries and returns how many were dropped.
func (s *Store) Prune() (int, error) {
	cutoff := now().Add(-s.maxAge).UTC().Format(time.RFC3339Nano)
	res, err := s.db.Exec(`DELETE FROM lookups WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning lookups: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Clear drops every cached lookup and returns how many were dropped.
func (s *Store) Clear() (int, error) {
	res, err := s.db.Exec(`DELETE FROM lookups`)
	if err != nil {
		return 0, fmt.Errorf("clearing lookups: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// LookupCount returns the number of cached lookups.
func (s *Store) LookupCount() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM lookups`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting lookups: %w", err)
	}
	return n, nil
}

// RunSummary is one persisted verification run.
type RunSummary struct {
	ID         int64
	Source     string
	StartedAt  time.Time
	Total      int
	Verified   int
	Review     int
	Unverified int
	Suspicious int
}

// SaveRun persists one verification run and its results in a single
// transaction, returning the run id.
func (s *Store) SaveRun(source string, results []types.VerificationResult) (int64, error) {
	counts := map[types.Label]int{}
	for _, r := range results {
		counts[r.Label]++
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (source, started_at, total, verified, review, unverified, suspicious)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		source, now().UTC().Format(time.RFC3339), len(results),
		counts[types.LabelVerified], counts[types.LabelReview],
		counts[types.LabelUnverified], counts[types.LabelSuspicious],
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO results (run_id, ref_num, label, status, confidence, title, authors, matched_title, corrected_title, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		matchedTitle := ""
		if r.Matched != nil {
			matchedTitle = r.Matched.Title
		}
		_, err := stmt.Exec(
			runID, r.RefNum, string(r.Label), string(r.Status), r.Confidence,
			r.Reference.Title, strings.Join(r.Reference.Authors, "; "),
			matchedTitle, r.CorrectedTitle, r.Source,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting result %d: %w", r.RefNum, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Runs returns the most recent runs, newest first, up to limit.
func (s *Store) Runs(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT id, source, started_at, total, verified, review, unverified, suspicious
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var startedAt string
		if err := rows.Scan(&r.ID, &r.Source, &startedAt, &r.Total,
			&r.Verified, &r.Review, &r.Unverified, &r.Suspicious); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists deduplication runs in SQLite and builds a
// full-text index over cluster representatives.
// Implements: prd004-results (R1-R4);
//
//	docs/ARCHITECTURE § Results Store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/slr-engine/pkg/types"
)

const dbFile = "dedup.db"

// Store manages the results SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the results database at resultsDir/dedup.db.
// It creates the schema if it does not exist (R1.2, R1.3).
func NewStore(cfg types.ResultsConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.ResultsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results directory: %w", err)
	}

	dbPath := filepath.Join(cfg.ResultsDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}

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
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			strategy TEXT NOT NULL,
			stats TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS clusters (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			cluster_id INTEGER NOT NULL,
			size INTEGER NOT NULL,
			confidence REAL NOT NULL,
			title TEXT,
			abstract TEXT,
			cluster TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_clusters_run_id ON clusters(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='clusters_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE clusters_fts USING fts5(title, abstract, content=clusters, content_rowid=rowid)`,
			`CREATE TRIGGER clusters_ai AFTER INSERT ON clusters BEGIN
				INSERT INTO clusters_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
			`CREATE TRIGGER clusters_ad AFTER DELETE ON clusters BEGIN
				INSERT INTO clusters_fts(clusters_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			END`,
			`CREATE TRIGGER clusters_au AFTER UPDATE ON clusters BEGIN
				INSERT INTO clusters_fts(clusters_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
				INSERT INTO clusters_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// RunSummary describes one stored deduplication run (R2.1).
type RunSummary struct {
	ID        int64            `json:"id" yaml:"id"`
	CreatedAt time.Time        `json:"created_at" yaml:"created_at"`
	Strategy  string           `json:"strategy" yaml:"strategy"`
	Stats     types.DedupStats `json:"stats" yaml:"stats"`
}

// Run is a stored run with its full cluster list (R2.2).
type Run struct {
	RunSummary `yaml:",inline"`
	Clusters   []types.Cluster `json:"clusters" yaml:"clusters"`
}

// ClusterHit is one full-text search match (R3.2).
type ClusterHit struct {
	RunID   int64         `json:"run_id" yaml:"run_id"`
	Cluster types.Cluster `json:"cluster" yaml:"cluster"`
}

// SaveRun stores a completed deduplication run and its clusters in one
// transaction, returning the new run ID (R1.4, R1.5).
func (s *Store) SaveRun(ctx context.Context, strategy string, clusters []types.Cluster, stats types.DedupStats) (int64, error) {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return 0, fmt.Errorf("encoding stats: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_at, strategy, stats) VALUES (?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), strategy, string(statsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO clusters (run_id, cluster_id, size, confidence, title, abstract, cluster)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range clusters {
		clusterJSON, err := json.Marshal(c)
		if err != nil {
			return 0, fmt.Errorf("encoding cluster %d: %w", c.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			runID, c.ID, c.Size(), c.Confidence,
			c.Representative.Title, c.Representative.Abstract, string(clusterJSON),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting cluster %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// ListRuns returns stored run summaries, newest first (R2.1).
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, strategy, stats FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		summary, err := scanRunSummary(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, summary)
	}
	return runs, rows.Err()
}

// GetRun returns one stored run with its clusters (R2.2).
func (s *Store) GetRun(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, strategy, stats FROM runs WHERE id = ?`, id)

	summary, err := scanRunSummary(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %d not found", id)
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT cluster FROM clusters WHERE run_id = ? ORDER BY cluster_id`, id)
	if err != nil {
		return nil, fmt.Errorf("querying clusters: %w", err)
	}
	defer rows.Close()

	run := &Run{RunSummary: summary}
	for rows.Next() {
		var clusterJSON string
		if err := rows.Scan(&clusterJSON); err != nil {
			return nil, fmt.Errorf("scanning cluster: %w", err)
		}
		var c types.Cluster
		if err := json.Unmarshal([]byte(clusterJSON), &c); err != nil {
			return nil, fmt.Errorf("decoding cluster: %w", err)
		}
		run.Clusters = append(run.Clusters, c)
	}
	return run, rows.Err()
}

// SearchClusters runs an FTS5 query over representative titles and
// abstracts across all stored runs, ranked by relevance (R3.1, R3.2).
// Zero maxResults uses the store default.
func (s *Store) SearchClusters(ctx context.Context, query string, maxResults int) ([]ClusterHit, error) {
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT c.run_id, c.cluster
		 FROM clusters_fts
		 JOIN clusters c ON c.rowid = clusters_fts.rowid
		 WHERE clusters_fts MATCH ?
		 ORDER BY clusters_fts.rank
		 LIMIT ?`, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("searching clusters: %w", err)
	}
	defer rows.Close()

	var hits []ClusterHit
	for rows.Next() {
		var hit ClusterHit
		var clusterJSON string
		if err := rows.Scan(&hit.RunID, &clusterJSON); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		if err := json.Unmarshal([]byte(clusterJSON), &hit.Cluster); err != nil {
			return nil, fmt.Errorf("decoding cluster: %w", err)
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunSummary(row rowScanner) (RunSummary, error) {
	var (
		summary   RunSummary
		createdAt string
		statsJSON string
	)
	if err := row.Scan(&summary.ID, &createdAt, &summary.Strategy, &statsJSON); err != nil {
		if err == sql.ErrNoRows {
			return summary, err
		}
		return summary, fmt.Errorf("scanning run: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		summary.CreatedAt = t
	}
	if err := json.Unmarshal([]byte(statsJSON), &summary.Stats); err != nil {
		return summary, fmt.Errorf("decoding stats: %w", err)
	}
	return summary, nil
}

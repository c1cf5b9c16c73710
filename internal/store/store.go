// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store indexes mined relations in SQLite so they can be queried
// by gene, stem or sentence text, aggregated into gene-pair counts, and
// exported. Results arrive either live from the mining pipeline (Sink) or
// from a finished result file (IngestFile).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/gene-relations/pkg/types"
)

const dbFile = "relations.db"

// Store manages the relation index database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates dir/relations.db and its schema.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dir: dir, maxResults: maxResults}
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

// Dir returns the directory holding the database and exports.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			source_mod_time TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			papers INTEGER NOT NULL DEFAULT 0,
			relations INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS papers (
			pmid TEXT PRIMARY KEY,
			year TEXT,
			journal_title TEXT,
			article_title TEXT,
			run_id TEXT REFERENCES runs(id)
		)`,
		`CREATE TABLE IF NOT EXISTS relations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pmid TEXT NOT NULL REFERENCES papers(pmid) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			sentence TEXT NOT NULL,
			stems TEXT NOT NULL,
			genes TEXT NOT NULL,
			UNIQUE (pmid, position)
		)`,
		`CREATE TABLE IF NOT EXISTS relation_genes (
			relation_id INTEGER NOT NULL REFERENCES relations(id) ON DELETE CASCADE,
			gene TEXT NOT NULL COLLATE NOCASE,
			PRIMARY KEY (relation_id, gene)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_relation_genes_gene ON relation_genes(gene)`,
		`CREATE INDEX IF NOT EXISTS idx_relations_pmid ON relations(pmid)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from one ingestion run.
type IngestSummary struct {
	RunID     string
	Indexed   int
	Updated   int
	Relations int
	Skipped   bool
}

// Total returns the number of papers ingested.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated
}

func (s *Store) beginRun(ctx context.Context, source, modTime string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, source_mod_time, started_at) VALUES (?, ?, ?, ?)`,
		id, source, modTime, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return id, nil
}

func (s *Store) finishRun(ctx context.Context, sum IngestSummary) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, papers = ?, relations = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), sum.Total(), sum.Relations, sum.RunID)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

// Ingest indexes results under a new run labelled source.
func (s *Store) Ingest(ctx context.Context, source string, results []types.PaperResult) (IngestSummary, error) {
	runID, err := s.beginRun(ctx, source, "")
	if err != nil {
		return IngestSummary{}, err
	}
	sum := IngestSummary{RunID: runID}
	for _, r := range results {
		if err := s.ingestResult(ctx, runID, r, &sum); err != nil {
			return sum, err
		}
	}
	return sum, s.finishRun(ctx, sum)
}

// IngestFile streams a result file (a JSON array of PaperResult) into the
// index. A file whose modification time matches a finished earlier run is
// skipped; re-ingesting a paper replaces its relations.
func (s *Store) IngestFile(ctx context.Context, path string, w io.Writer) (IngestSummary, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading result file: %w", err)
	}
	modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

	var prior string
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM runs WHERE source = ? AND source_mod_time = ? AND finished_at IS NOT NULL`,
		abs, modTime).Scan(&prior)
	if err == nil {
		fmt.Fprintf(w, "skipped %s (unchanged since run %s)\n", path, prior)
		return IngestSummary{RunID: prior, Skipped: true}, nil
	}
	if err != sql.ErrNoRows {
		return IngestSummary{}, fmt.Errorf("checking prior runs: %w", err)
	}

	f, err := os.Open(abs)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("opening result file: %w", err)
	}
	defer f.Close()

	runID, err := s.beginRun(ctx, abs, modTime)
	if err != nil {
		return IngestSummary{}, err
	}
	sum := IngestSummary{RunID: runID}

	dec := json.NewDecoder(f)
	if _, err := dec.Token(); err != nil {
		return sum, fmt.Errorf("parsing %s: expected JSON array: %w", path, err)
	}
	for dec.More() {
		select {
		case <-ctx.Done():
			return sum, ctx.Err()
		default:
		}
		var r types.PaperResult
		if err := dec.Decode(&r); err != nil {
			return sum, fmt.Errorf("parsing %s: %w", path, err)
		}
		if err := s.ingestResult(ctx, runID, r, &sum); err != nil {
			return sum, err
		}
	}

	fmt.Fprintf(w, "indexed: %d, updated: %d, relations: %d (run %s)\n",
		sum.Indexed, sum.Updated, sum.Relations, runID)
	return sum, s.finishRun(ctx, sum)
}

func (s *Store) ingestResult(ctx context.Context, runID string, r types.PaperResult, sum *IngestSummary) error {
	if r.PMID == "" {
		return fmt.Errorf("result without PMID")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT count(*) FROM papers WHERE pmid = ?`, r.PMID).Scan(&exists); err != nil {
		return fmt.Errorf("looking up paper %s: %w", r.PMID, err)
	}
	if exists > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM relations WHERE pmid = ?`, r.PMID); err != nil {
			return fmt.Errorf("deleting old relations: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO papers (pmid, year, journal_title, article_title, run_id)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(pmid) DO UPDATE SET
			year=excluded.year, journal_title=excluded.journal_title,
			article_title=excluded.article_title, run_id=excluded.run_id`,
		r.PMID, r.Year, r.JournalTitle, r.ArticleTitle, runID)
	if err != nil {
		return fmt.Errorf("upserting paper %s: %w", r.PMID, err)
	}

	relStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO relations (pmid, position, sentence, stems, genes) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer relStmt.Close()
	geneStmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO relation_genes (relation_id, gene) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer geneStmt.Close()

	for i, rel := range r.Relations {
		stemsJSON, _ := json.Marshal(nonNil(rel.Stems))
		genesJSON, _ := json.Marshal(nonNil(rel.Genes))
		res, err := relStmt.ExecContext(ctx, r.PMID, i, rel.Sentence, string(stemsJSON), string(genesJSON))
		if err != nil {
			return fmt.Errorf("inserting relation %s/%d: %w", r.PMID, i, err)
		}
		relID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading relation id: %w", err)
		}
		for _, g := range rel.Genes {
			if _, err := geneStmt.ExecContext(ctx, relID, g); err != nil {
				return fmt.Errorf("inserting gene %s: %w", g, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", r.PMID, err)
	}
	if exists > 0 {
		sum.Updated++
	} else {
		sum.Indexed++
	}
	sum.Relations += len(r.Relations)
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Stats summarizes the index contents.
type Stats struct {
	Papers    int `json:"papers" yaml:"papers"`
	Relations int `json:"relations" yaml:"relations"`
	Genes     int `json:"genes" yaml:"genes"`
	Runs      int `json:"runs" yaml:"runs"`
}

// Stats counts papers, relations, distinct genes and runs.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT count(*) FROM papers),
		(SELECT count(*) FROM relations),
		(SELECT count(DISTINCT gene) FROM relation_genes),
		(SELECT count(*) FROM runs)`).Scan(&st.Papers, &st.Relations, &st.Genes, &st.Runs)
	if err != nil {
		return Stats{}, fmt.Errorf("counting index: %w", err)
	}
	return st, nil
}

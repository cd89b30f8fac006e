// Package journal records evaluation verdicts in a local SQLite
// database for audit and inspection. It persists verdicts only;
// aggregation state stays in-process.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Journal is an append-only store of evaluation verdicts.
// Single-writer: SQLite is opened with one connection to avoid
// SQLITE_BUSY under concurrent CLI invocations.
type Journal struct {
	db *sql.DB
}

// Verdict is one journaled evaluation outcome. RunToken correlates all
// verdicts produced by one caller run.
type Verdict struct {
	RunToken     string `json:"run_token"`
	ConstraintID string `json:"constraint_id"`
	Passed       bool   `json:"passed"`
	Message      string `json:"message,omitempty"`
	Timestamp    int64  `json:"timestamp"` // epoch milliseconds
	Fingerprint  string `json:"fingerprint"`
}

// Open creates or opens a journal database at the given path.
// Idempotent - safe to call on an existing journal.
//
// The database is configured with WAL mode for concurrent reads, NORMAL
// synchronous mode, a 5-second busy timeout, and foreign key
// enforcement.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	// SQLite supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("apply %s: %w", pragma, err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Append records a verdict. Rows are never updated afterward.
func (j *Journal) Append(ctx context.Context, v Verdict) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO verdicts (run_token, constraint_id, passed, message, timestamp_ms, fingerprint)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		v.RunToken, v.ConstraintID, v.Passed, v.Message, v.Timestamp, v.Fingerprint,
	)
	if err != nil {
		return fmt.Errorf("append verdict %s: %w", v.ConstraintID, err)
	}
	return nil
}

// Recent returns the latest limit verdicts, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Verdict, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT run_token, constraint_id, passed, message, timestamp_ms, fingerprint
		 FROM verdicts ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("read recent verdicts: %w", err)
	}
	defer rows.Close()
	return scanVerdicts(rows)
}

// ByRun returns all verdicts recorded under one run token, oldest
// first - the order they were appended in.
func (j *Journal) ByRun(ctx context.Context, runToken string) ([]Verdict, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT run_token, constraint_id, passed, message, timestamp_ms, fingerprint
		 FROM verdicts WHERE run_token = ? ORDER BY id ASC`, runToken)
	if err != nil {
		return nil, fmt.Errorf("read verdicts for run %s: %w", runToken, err)
	}
	defer rows.Close()
	return scanVerdicts(rows)
}

func scanVerdicts(rows *sql.Rows) ([]Verdict, error) {
	var verdicts []Verdict
	for rows.Next() {
		var v Verdict
		if err := rows.Scan(&v.RunToken, &v.ConstraintID, &v.Passed, &v.Message, &v.Timestamp, &v.Fingerprint); err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		verdicts = append(verdicts, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verdicts: %w", err)
	}
	return verdicts, nil
}

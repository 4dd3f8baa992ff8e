// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a searchable log of render results in SQLite.
// The engine records every attempt through Store.Record; the CLI lists,
// searches, exports and prunes the log.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docgen/pkg/types"
)

const defaultMaxResults = 50

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the render history database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the history database at path, creating the
// parent directory and the schema when missing.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Batch renders record concurrently; a single connection serializes
	// the writes.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, maxResults: defaultMaxResults}
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
		`CREATE TABLE IF NOT EXISTS renders (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			template TEXT NOT NULL,
			output_path TEXT,
			format TEXT,
			success INTEGER NOT NULL,
			unresolved TEXT,
			diagnostics TEXT,
			error TEXT,
			rendered_at TEXT NOT NULL,
			duration_ns INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_renders_template ON renders(template)`,
		`CREATE INDEX IF NOT EXISTS idx_renders_rendered_at ON renders(rendered_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='renders_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	// Placeholder keys contain underscores; keep them as single tokens.
	ftsStatements := []string{
		`CREATE VIRTUAL TABLE renders_fts USING fts5(
			template, output_path, unresolved, error,
			content=renders, content_rowid=rowid,
			tokenize="unicode61 tokenchars '_'"
		)`,
		`CREATE TRIGGER renders_ai AFTER INSERT ON renders BEGIN
			INSERT INTO renders_fts(rowid, template, output_path, unresolved, error)
			VALUES (new.rowid, new.template, new.output_path, new.unresolved, new.error);
		END`,
		`CREATE TRIGGER renders_ad AFTER DELETE ON renders BEGIN
			INSERT INTO renders_fts(renders_fts, rowid, template, output_path, unresolved, error)
			VALUES ('delete', old.rowid, old.template, old.output_path, old.unresolved, old.error);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// Record appends one render result to the log.
func (s *Store) Record(ctx context.Context, res *types.RenderResult) error {
	unresolved, err := json.Marshal(res.Unresolved)
	if err != nil {
		return fmt.Errorf("marshaling unresolved keys: %w", err)
	}
	diags, err := json.Marshal(res.Diagnostics)
	if err != nil {
		return fmt.Errorf("marshaling diagnostics: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO renders (template, output_path, format, success, unresolved, diagnostics, error, rendered_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.Template, res.OutputPath, string(res.Format), res.Success,
		string(unresolved), string(diags), res.Error,
		res.RenderedAt.UTC().Format(timeLayout), int64(res.Duration),
	)
	if err != nil {
		return fmt.Errorf("recording render: %w", err)
	}
	return nil
}

// QueryOptions filters history queries.
type QueryOptions struct {
	// Query is an FTS5 match over template, output path, unresolved keys
	// and error text.
	Query string

	// Template restricts results to one template name, ignoring case.
	Template string

	// FailedOnly keeps failed renders only.
	FailedOnly bool

	// Since drops renders before this time. Zero keeps everything.
	Since time.Time

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Entry is one recorded render.
type Entry struct {
	ID                 int64 `json:"id" yaml:"id"`
	types.RenderResult `yaml:",inline"`
}

// List returns recorded renders, newest first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT r.rowid, r.template, r.output_path, r.format, r.success,
			r.unresolved, r.diagnostics, r.error, r.rendered_at, r.duration_ns
		FROM renders r`)
	if opts.Query != "" {
		qb.WriteString(` JOIN renders_fts ON renders_fts.rowid = r.rowid WHERE renders_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(` WHERE 1=1`)
	}

	if opts.Template != "" {
		qb.WriteString(` AND r.template = ? COLLATE NOCASE`)
		args = append(args, opts.Template)
	}
	if opts.FailedOnly {
		qb.WriteString(` AND r.success = 0`)
	}
	if !opts.Since.IsZero() {
		qb.WriteString(` AND r.rendered_at >= ?`)
		args = append(args, opts.Since.UTC().Format(timeLayout))
	}

	qb.WriteString(` ORDER BY r.rendered_at DESC, r.rowid DESC LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			outputPath sql.NullString
			format     sql.NullString
			unresolved sql.NullString
			diags      sql.NullString
			errText    sql.NullString
			renderedAt string
			durationNS sql.NullInt64
		)
		if err := rows.Scan(
			&e.ID, &e.Template, &outputPath, &format, &e.Success,
			&unresolved, &diags, &errText, &renderedAt, &durationNS,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		e.OutputPath = outputPath.String
		e.Format = types.OutputFormat(format.String)
		e.Error = errText.String
		e.Duration = time.Duration(durationNS.Int64)
		if unresolved.Valid {
			json.Unmarshal([]byte(unresolved.String), &e.Unresolved)
		}
		if e.Unresolved == nil {
			e.Unresolved = []string{}
		}
		if diags.Valid {
			json.Unmarshal([]byte(diags.String), &e.Diagnostics)
		}
		if t, err := time.Parse(timeLayout, renderedAt); err == nil {
			e.RenderedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes renders recorded before cutoff and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM renders WHERE rendered_at < ?`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	return res.RowsAffected()
}

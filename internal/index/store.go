// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index records export passes in a SQLite database kept next to
// the exported tree. It stores every exported document and attachment,
// supports full-text search over titles and bodies, and writes a manifest.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	// DirName is the metadata directory created inside an export.
	DirName = ".backlog"

	dbFile = "index.db"
)

// Path returns the index database path for an export directory.
func Path(outputDir string) string {
	return filepath.Join(outputDir, DirName, dbFile)
}

// Store manages the export index database.
type Store struct {
	db  *sql.DB
	dir string

	// fts is false when the SQLite build lacks FTS5; search then falls back
	// to LIKE matching.
	fts bool
}

// Open opens or creates the index for outputDir.
func Open(outputDir string) (*Store, error) {
	dir := filepath.Join(outputDir, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// OpenExisting opens the index for outputDir and fails if none exists.
func OpenExisting(outputDir string) (*Store, error) {
	if _, err := os.Stat(Path(outputDir)); err != nil {
		return nil, fmt.Errorf("no export index in %s: %w", outputDir, err)
	}
	return Open(outputDir)
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			project_key TEXT NOT NULL,
			space_domain TEXT NOT NULL,
			output_dir TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			documents INTEGER NOT NULL DEFAULT 0,
			attachments INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			path TEXT NOT NULL,
			body TEXT NOT NULL,
			updated TEXT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS attachments (
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			attachment_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			size INTEGER,
			PRIMARY KEY (document_id, attachment_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_run_id ON documents(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='documents_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		s.fts = true
		return nil
	}

	if _, err := s.db.Exec(
		`CREATE VIRTUAL TABLE documents_fts USING fts5(title, body, content=documents, content_rowid=rowid)`,
	); err != nil {
		if strings.Contains(err.Error(), "no such module") {
			return nil
		}
		return fmt.Errorf("creating FTS table: %w", err)
	}

	triggers := []string{
		`CREATE TRIGGER documents_ai AFTER INSERT ON documents BEGIN
			INSERT INTO documents_fts(rowid, title, body) VALUES (new.rowid, new.title, new.body);
		END`,
		`CREATE TRIGGER documents_ad AFTER DELETE ON documents BEGIN
			INSERT INTO documents_fts(documents_fts, rowid, title, body) VALUES('delete', old.rowid, old.title, old.body);
		END`,
		`CREATE TRIGGER documents_au AFTER UPDATE ON documents BEGIN
			INSERT INTO documents_fts(documents_fts, rowid, title, body) VALUES('delete', old.rowid, old.title, old.body);
			INSERT INTO documents_fts(rowid, title, body) VALUES (new.rowid, new.title, new.body);
		END`,
	}
	for _, stmt := range triggers {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	s.fts = true
	return nil
}

// Run describes one export pass.
type Run struct {
	ID          string    `json:"id" yaml:"id"`
	ProjectKey  string    `json:"project_key" yaml:"project_key"`
	SpaceDomain string    `json:"space_domain" yaml:"space_domain"`
	OutputDir   string    `json:"output_dir" yaml:"output_dir"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Documents   int       `json:"documents" yaml:"documents"`
	Attachments int       `json:"attachments" yaml:"attachments"`
}

// DocumentRecord is an exported document.
type DocumentRecord struct {
	ID          string             `json:"id" yaml:"id"`
	Title       string             `json:"title" yaml:"title"`
	Path        string             `json:"path" yaml:"path"`
	Body        string             `json:"-" yaml:"-"`
	Updated     string             `json:"updated,omitempty" yaml:"updated,omitempty"`
	Attachments []AttachmentRecord `json:"attachments,omitempty" yaml:"attachments,omitempty"`
}

// AttachmentRecord is an exported attachment.
type AttachmentRecord struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
	Size int64  `json:"size,omitempty" yaml:"size,omitempty"`
}

// BeginRun records the start of an export pass.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, project_key, space_domain, output_dir, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.ProjectKey, run.SpaceDomain, run.OutputDir, run.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun stores the completion time and counts of a run and drops the
// documents no longer present in it, so search only sees the latest export.
func (s *Store) FinishRun(ctx context.Context, runID string, finished time.Time, documents, attachments int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", runID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, documents = ?, attachments = ? WHERE id = ?`,
		finished.UTC().Format(time.RFC3339Nano), documents, attachments, runID,
	); err != nil {
		return fmt.Errorf("finishing run %s: %w", runID, err)
	}
	// Attachment rows cascade and the FTS delete trigger keeps search in step.
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE run_id != ?`, runID); err != nil {
		return fmt.Errorf("pruning documents older than run %s: %w", runID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("finishing run %s: %w", runID, err)
	}
	return nil
}

// RecordDocument upserts a document and replaces its attachments. position
// is the document's place in traversal order within the run.
func (s *Store) RecordDocument(ctx context.Context, runID string, position int, doc DocumentRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, title, path, body, updated, run_id, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, path=excluded.path, body=excluded.body,
			updated=excluded.updated, run_id=excluded.run_id, position=excluded.position`,
		doc.ID, doc.Title, doc.Path, doc.Body, doc.Updated, runID, position,
	)
	if err != nil {
		return fmt.Errorf("upserting document %s: %w", doc.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM attachments WHERE document_id = ?`, doc.ID); err != nil {
		return fmt.Errorf("deleting old attachments of %s: %w", doc.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO attachments (document_id, attachment_id, name, path, size) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range doc.Attachments {
		if _, err := stmt.ExecContext(ctx, doc.ID, a.ID, a.Name, a.Path, a.Size); err != nil {
			return fmt.Errorf("inserting attachment %d of %s: %w", a.ID, doc.ID, err)
		}
	}

	return tx.Commit()
}

// Run returns the stored run with the given id.
func (s *Store) Run(ctx context.Context, runID string) (Run, error) {
	var (
		run      Run
		started  string
		finished sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_key, space_domain, output_dir, started_at, finished_at, documents, attachments
		 FROM runs WHERE id = ?`, runID,
	).Scan(&run.ID, &run.ProjectKey, &run.SpaceDomain, &run.OutputDir, &started, &finished, &run.Documents, &run.Attachments)
	if err != nil {
		if err == sql.ErrNoRows {
			return Run{}, fmt.Errorf("run %s not found", runID)
		}
		return Run{}, fmt.Errorf("looking up run: %w", err)
	}
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return Run{}, fmt.Errorf("parsing started_at of run %s: %w", runID, err)
	}
	if finished.Valid {
		if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished.String); err != nil {
			return Run{}, fmt.Errorf("parsing finished_at of run %s: %w", runID, err)
		}
	}
	return run, nil
}

// Documents returns the documents written by a run in traversal order,
// each with its attachments.
func (s *Store) Documents(ctx context.Context, runID string) ([]DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, path, body, COALESCE(updated, '') FROM documents WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	var docs []DocumentRecord
	for rows.Next() {
		var d DocumentRecord
		if err := rows.Scan(&d.ID, &d.Title, &d.Path, &d.Body, &d.Updated); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range docs {
		atts, err := s.attachments(ctx, docs[i].ID)
		if err != nil {
			return nil, err
		}
		docs[i].Attachments = atts
	}
	return docs, nil
}

func (s *Store) attachments(ctx context.Context, documentID string) ([]AttachmentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT attachment_id, name, path, COALESCE(size, 0) FROM attachments WHERE document_id = ? ORDER BY rowid`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying attachments of %s: %w", documentID, err)
	}
	defer rows.Close()

	var atts []AttachmentRecord
	for rows.Next() {
		var a AttachmentRecord
		if err := rows.Scan(&a.ID, &a.Name, &a.Path, &a.Size); err != nil {
			return nil, fmt.Errorf("scanning attachment: %w", err)
		}
		atts = append(atts, a)
	}
	return atts, rows.Err()
}

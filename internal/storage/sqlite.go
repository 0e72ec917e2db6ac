// Package storage provides the SQLite implementation of the Store interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/shori/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		content TEXT NOT NULL,
		keywords TEXT,
		status TEXT NOT NULL,
		result TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
	CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Create inserts a document, stamping CreatedAt/UpdatedAt.
func (s *SQLiteStore) Create(ctx context.Context, doc *models.Document) error {
	keywordsJSON, err := json.Marshal(doc.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}

	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, name, type, content, keywords, status, result, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Name, string(doc.Type), doc.Content, string(keywordsJSON),
		string(doc.Status), nullableResult(doc.Result), doc.CreatedAt, doc.UpdatedAt,
	)
	return err
}

// Get returns a document by ID, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, content, keywords, status, result, created_at, updated_at
		 FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// List returns all documents ordered by creation time.
func (s *SQLiteStore) List(ctx context.Context) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type, content, keywords, status, result, created_at, updated_at
		 FROM documents ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Update applies the user-editable fields and refreshes UpdatedAt.
// Returns ErrNotFound if no document has the given ID.
func (s *SQLiteStore) Update(ctx context.Context, id string, upd *models.DocumentUpdate) (*models.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		doc.Name = *upd.Name
	}
	if upd.Keywords != nil {
		doc.Keywords = *upd.Keywords
	}
	doc.UpdatedAt = time.Now().UTC()

	keywordsJSON, err := json.Marshal(doc.Keywords)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keywords: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE documents SET name = ?, keywords = ?, updated_at = ? WHERE id = ?`,
		doc.Name, string(keywordsJSON), doc.UpdatedAt, id)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a document. Returns ErrNotFound when nothing was deleted.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus updates the status (and result when non-nil) in a single
// statement, so the transition is atomic per row.
func (s *SQLiteStore) SetStatus(ctx context.Context, id string, status models.Status, result []byte) (*models.Document, error) {
	now := time.Now().UTC()
	var (
		res sql.Result
		err error
	)
	if result != nil {
		res, err = s.db.ExecContext(ctx,
			`UPDATE documents SET status = ?, result = ?, updated_at = ? WHERE id = ?`,
			string(status), string(result), now, id)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE documents SET status = ?, updated_at = ? WHERE id = ?`,
			string(status), now, id)
	}
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Ping reports whether the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		doc          models.Document
		docType      string
		status       string
		keywordsJSON sql.NullString
		resultJSON   sql.NullString
	)
	err := row.Scan(&doc.ID, &doc.Name, &docType, &doc.Content, &keywordsJSON,
		&status, &resultJSON, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	doc.Type = models.DocumentType(docType)
	doc.Status = models.Status(status)
	if keywordsJSON.Valid && keywordsJSON.String != "" {
		if err := json.Unmarshal([]byte(keywordsJSON.String), &doc.Keywords); err != nil {
			return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
		}
	}
	if doc.Keywords == nil {
		doc.Keywords = []string{}
	}
	if resultJSON.Valid {
		doc.Result = json.RawMessage(resultJSON.String)
	}
	return &doc, nil
}

func nullableResult(result json.RawMessage) interface{} {
	if result == nil {
		return nil
	}
	return string(result)
}

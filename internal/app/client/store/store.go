package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"

	"initium/internal/domain/collection"
	"initium/internal/domain/document"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrNotFound          = errors.New("document not found")
	ErrMissingID         = errors.New("document has no id")
)

// Store is the versioned local document store. Every collection gets its own
// table holding JSON documents keyed by id, with expression indexes over the
// declared fields.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens or creates the store at path and applies any pending schema
// versions.
func Open(path string, log *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, log: log}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return s, nil
}

// migrate applies schema versions above the recorded user_version. Each step
// only creates tables and indexes, so an interrupted upgrade is safe to rerun.
func (s *Store) migrate() error {
	var current int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, version := range schemaVersions {
		if version.Version <= current {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration: %w", err)
		}

		for _, table := range version.Tables {
			if err := createTable(tx, table); err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to create table %s: %w", table.Collection, err)
			}
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version.Version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to set schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration: %w", err)
		}

		s.log.Info("schema upgraded", "version", version.Version, "tables", len(version.Tables))
		current = version.Version
	}

	return nil
}

func createTable(tx *sql.Tx, table tableSchema) error {
	_, err := tx.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			doc TEXT NOT NULL
		)
	`, table.Collection))
	if err != nil {
		return err
	}

	for _, field := range table.Indexed {
		_, err := tx.Exec(fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s (json_extract(doc, '$.%s'))",
			table.Collection, field, table.Collection, field,
		))
		if err != nil {
			return err
		}
	}

	return nil
}

// Put inserts or replaces a document by id.
func (s *Store) Put(ctx context.Context, name string, doc document.Document) error {
	if !collection.Exists(name) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}

	id := doc.ID()
	if id == "" {
		return ErrMissingID
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, doc) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc
	`, name), id, string(data))
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	return nil
}

// Get fetches one document by id. Date strings are revived into time.Time.
func (s *Store) Get(ctx context.Context, name, id string) (document.Document, error) {
	if !collection.Exists(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}

	var data string
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT doc FROM %s WHERE id = ?", name), id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, name, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	return decodeDocument(data)
}

// Delete removes one document by id. Deleting an absent document is not an
// error.
func (s *Store) Delete(ctx context.Context, name, id string) error {
	if !collection.Exists(name) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", name), id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// All returns every document in the collection, ordered by id.
func (s *Store) All(ctx context.Context, name string) ([]document.Document, error) {
	if !collection.Exists(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT doc FROM %s ORDER BY id", name))
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc, err := decodeDocument(data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// Filter returns the documents whose field equals value. The comparison runs
// over json_extract, so declared fields use their index.
func (s *Store) Filter(ctx context.Context, name, field string, value any) ([]document.Document, error) {
	if !collection.Exists(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT doc FROM %s WHERE json_extract(doc, '$.%s') = ? ORDER BY id", name, field,
	), value)
	if err != nil {
		return nil, fmt.Errorf("failed to filter documents: %w", err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc, err := decodeDocument(data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// Count returns the number of documents in the collection.
func (s *Store) Count(ctx context.Context, name string) (int, error) {
	if !collection.Exists(name) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", name)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func decodeDocument(data string) (document.Document, error) {
	var doc document.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	doc.ReviveDates()
	return doc, nil
}

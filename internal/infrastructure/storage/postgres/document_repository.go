package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"initium/internal/domain/document"
)

func NewDocumentRepository(pool *pgxpool.Pool, log *slog.Logger) *DocumentRepository {
	return &DocumentRepository{
		pool: pool,
		log:  log,
	}
}

// DocumentRepository stores synced documents as jsonb rows keyed by
// (user_id, collection, doc_id).
type DocumentRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func (r *DocumentRepository) Upsert(ctx context.Context, userID, collection, docID string, doc document.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO documents (user_id, collection, doc_id, doc, synced_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (user_id, collection, doc_id)
		 DO UPDATE SET doc = EXCLUDED.doc, synced_at = now()`,
		userID, collection, docID, data)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) List(ctx context.Context, userID, collection string) ([]document.Document, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT doc FROM documents WHERE user_id = $1 AND collection = $2 ORDER BY doc_id`,
		userID, collection)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []document.Document{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		var doc document.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse document: %w", err)
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

func (r *DocumentRepository) DeleteAll(ctx context.Context, userID, collection string) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM documents WHERE user_id = $1 AND collection = $2`,
		userID, collection)
	if err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

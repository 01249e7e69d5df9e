package sync

import (
	"context"

	"initium/internal/domain/document"
)

// Repository is the server-side document store, partitioned per user and
// collection.
type Repository interface {
	Upsert(ctx context.Context, userID, collection, docID string, doc document.Document) error
	List(ctx context.Context, userID, collection string) ([]document.Document, error)
	DeleteAll(ctx context.Context, userID, collection string) (int, error)
}

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"initium/internal/domain/collection"
	"initium/internal/domain/document"
)

type Servicer interface {
	Push(ctx context.Context, userID, name string, docs []document.Document) (int, error)
	Pull(ctx context.Context, userID string, names []string) (map[string][]document.Document, error)
	Migrate(ctx context.Context, userID string, all map[string][]document.Document) (*MigrateResponse, error)
	Clear(ctx context.Context, userID string, names []string) (map[string]int, error)
}

// Service implements the remote half of the sync protocol: whole-collection
// upserts keyed by document id, partitioned per user.
type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Push upserts every pushed document by id. Documents without an id get a
// generated one rather than being rejected.
func (s *Service) Push(ctx context.Context, userID, name string, docs []document.Document) (int, error) {
	if !collection.IsSynced(name) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}

	syncedAt := time.Now().UTC().Format(time.RFC3339)
	synced := 0
	for _, doc := range docs {
		id := doc.ID()
		if id == "" {
			id = uuid.New().String()
			doc = doc.Clone()
			doc["id"] = id
		}
		doc["synced_at"] = syncedAt

		if err := s.repo.Upsert(ctx, userID, name, id, doc); err != nil {
			return synced, fmt.Errorf("upsert %s/%s: %w", name, id, err)
		}
		synced++
	}

	s.log.Debug("collection pushed", "user_id", userID, "collection", name, "count", synced)
	return synced, nil
}

// Pull returns the user's documents for the requested collections. Unknown
// names are silently dropped; an empty request means every synced collection.
func (s *Service) Pull(ctx context.Context, userID string, names []string) (map[string][]document.Document, error) {
	if len(names) == 0 {
		names = collection.Synced
	}

	result := make(map[string][]document.Document)
	for _, name := range names {
		if !collection.IsSynced(name) {
			continue
		}
		docs, err := s.repo.List(ctx, userID, name)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", name, err)
		}
		result[name] = docs
	}

	return result, nil
}

// Migrate ingests the whole local dataset in one request, reporting per
// collection so a partially-valid payload still lands what it can.
func (s *Service) Migrate(ctx context.Context, userID string, all map[string][]document.Document) (*MigrateResponse, error) {
	resp := &MigrateResponse{
		Success:     true,
		Collections: make(map[string]CollectionReport),
	}

	for name, docs := range all {
		count, err := s.Push(ctx, userID, name, docs)
		if err != nil {
			resp.Collections[name] = CollectionReport{
				Success: false,
				Message: err.Error(),
			}
			continue
		}
		resp.Collections[name] = CollectionReport{
			Success:     true,
			SyncedCount: count,
			Message:     fmt.Sprintf("Synced %d documents", count),
		}
		resp.TotalSynced += count
	}

	resp.Message = fmt.Sprintf("Successfully migrated %d total documents", resp.TotalSynced)
	return resp, nil
}

// Clear deletes the user's documents for the requested collections (all synced
// collections when the filter is empty).
func (s *Service) Clear(ctx context.Context, userID string, names []string) (map[string]int, error) {
	if len(names) == 0 {
		names = collection.Synced
	}

	deleted := make(map[string]int)
	for _, name := range names {
		if !collection.IsSynced(name) {
			continue
		}
		n, err := s.repo.DeleteAll(ctx, userID, name)
		if err != nil {
			return nil, fmt.Errorf("clear %s: %w", name, err)
		}
		deleted[name] = n
	}

	s.log.Info("cloud data cleared", "user_id", userID, "collections", len(deleted))
	return deleted, nil
}

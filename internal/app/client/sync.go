package client

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"golang.org/x/exp/slog"

	"initium/internal/app/client/store"
	"initium/internal/domain/collection"
	"initium/internal/domain/document"
	"initium/internal/domain/sync"
)

// Syncer orchestrates data exchange between the local store and the remote
// service. It never touches the network for guest or anonymous sessions, and
// at most one batch operation runs at a time.
type Syncer struct {
	store   *store.Store
	client  *httpClient
	session *Session
	log     *slog.Logger

	mu       gosync.RWMutex
	syncing  bool
	lastSync time.Time
}

func NewSyncer(st *store.Store, client *httpClient, session *Session, log *slog.Logger) *Syncer {
	return &Syncer{
		store:   st,
		client:  client,
		session: session,
		log:     log,
	}
}

// IsSyncing reports whether a batch operation is currently running.
func (s *Syncer) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncing
}

// LastSync returns the completion time of the last batch operation, zero when
// none ran yet.
func (s *Syncer) LastSync() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}

func (s *Syncer) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.syncing {
		return sync.ErrSyncInProgress
	}
	s.syncing = true
	return nil
}

func (s *Syncer) end() {
	s.mu.Lock()
	s.syncing = false
	s.lastSync = time.Now()
	s.mu.Unlock()
}

// PushCollection uploads one collection's local documents. An empty collection
// short-circuits without a network call.
func (s *Syncer) PushCollection(ctx context.Context, name string) (*sync.Result, error) {
	if !s.session.CanSync() {
		return nil, sync.ErrNotAuthenticated
	}
	if !collection.IsSynced(name) {
		return nil, fmt.Errorf("%w: %s", sync.ErrUnknownCollection, name)
	}

	docs, err := s.store.All(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(docs) == 0 {
		return &sync.Result{Success: true}, nil
	}

	resp, err := s.client.PushCollection(ctx, name, docs, s.LastSync())
	if err != nil {
		return &sync.Result{Error: err.Error()}, nil
	}

	s.log.Debug("collection pushed", "collection", name, "count", resp.SyncedCount)
	return &sync.Result{Success: true, Synced: resp.SyncedCount}, nil
}

// PullCollection downloads one collection and upserts every document into the
// local store. Remote documents overwrite local ones with the same id.
func (s *Syncer) PullCollection(ctx context.Context, name string) (*sync.Result, error) {
	if !s.session.CanSync() {
		return nil, sync.ErrNotAuthenticated
	}
	if !collection.IsSynced(name) {
		return nil, fmt.Errorf("%w: %s", sync.ErrUnknownCollection, name)
	}

	resp, err := s.client.PullCollections(ctx, []string{name})
	if err != nil {
		return &sync.Result{Error: err.Error()}, nil
	}

	pulled, err := s.applyPulled(ctx, name, resp.Data[name])
	if err != nil {
		return &sync.Result{Error: err.Error()}, nil
	}

	s.log.Debug("collection pulled", "collection", name, "count", pulled)
	return &sync.Result{Success: true, Synced: pulled}, nil
}

func (s *Syncer) applyPulled(ctx context.Context, name string, docs []document.Document) (int, error) {
	applied := 0
	for _, doc := range docs {
		if doc.ID() == "" {
			s.log.Warn("skipping pulled document without id", "collection", name)
			continue
		}
		if err := s.store.Put(ctx, name, doc); err != nil {
			return applied, fmt.Errorf("failed to store %s/%s: %w", name, doc.ID(), err)
		}
		applied++
	}
	return applied, nil
}

// SyncAll pushes then pulls every synced collection. A failing collection is
// recorded and skipped, never aborting the rest of the batch; Success is true
// only when every collection went through cleanly.
func (s *Syncer) SyncAll(ctx context.Context) (*sync.BatchResult, error) {
	if !s.session.CanSync() {
		return nil, sync.ErrNotAuthenticated
	}
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	result := &sync.BatchResult{
		Success:     true,
		Collections: make(map[string]*sync.CollectionStatus),
		StartedAt:   time.Now(),
	}
	for _, name := range collection.Synced {
		result.Collections[name] = &sync.CollectionStatus{}
	}

	for _, name := range collection.Synced {
		status := result.Collections[name]

		docs, err := s.store.All(ctx, name)
		if err != nil {
			status.PushError = err.Error()
			continue
		}
		if len(docs) == 0 {
			continue
		}

		resp, err := s.client.PushCollection(ctx, name, docs, s.LastSync())
		if err != nil {
			status.PushError = err.Error()
			s.log.Warn("push failed", "collection", name, "error", err)
			continue
		}
		status.Pushed = resp.SyncedCount
		result.Pushed += resp.SyncedCount
	}

	for _, name := range collection.Synced {
		status := result.Collections[name]

		resp, err := s.client.PullCollections(ctx, []string{name})
		if err != nil {
			status.PullError = err.Error()
			s.log.Warn("pull failed", "collection", name, "error", err)
			continue
		}

		pulled, err := s.applyPulled(ctx, name, resp.Data[name])
		status.Pulled = pulled
		result.Pulled += pulled
		if err != nil {
			status.PullError = err.Error()
		}
	}

	for _, status := range result.Collections {
		if !status.OK() {
			result.Success = false
		}
	}
	result.FinishedAt = time.Now()

	s.log.Info("sync completed",
		"success", result.Success,
		"pushed", result.Pushed,
		"pulled", result.Pulled,
	)
	return result, nil
}

// MigrateToCloud uploads the entire local dataset in one request, used when a
// guest account is promoted to a real one. Empty collections are omitted; a
// fully empty dataset short-circuits without a network call.
func (s *Syncer) MigrateToCloud(ctx context.Context) (*sync.MigrateResponse, error) {
	if !s.session.CanSync() {
		return nil, sync.ErrNotAuthenticated
	}
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	all := make(map[string][]document.Document)
	for _, name := range collection.Synced {
		docs, err := s.store.All(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if len(docs) == 0 {
			continue
		}
		all[name] = docs
	}

	if len(all) == 0 {
		return &sync.MigrateResponse{
			Success:     true,
			Collections: map[string]sync.CollectionReport{},
			Message:     "Nothing to migrate",
		}, nil
	}

	resp, err := s.client.Migrate(ctx, all)
	if err != nil {
		return nil, err
	}

	s.log.Info("local data migrated", "total_synced", resp.TotalSynced, "collections", len(resp.Collections))
	return resp, nil
}

// ClearCloud deletes every synced collection server-side. Local data is never
// touched.
func (s *Syncer) ClearCloud(ctx context.Context) (*sync.ClearResponse, error) {
	if !s.session.CanSync() {
		return nil, sync.ErrNotAuthenticated
	}
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	resp, err := s.client.ClearCloud(ctx, collection.Synced)
	if err != nil {
		return nil, err
	}

	s.log.Info("cloud data cleared", "collections", len(resp.DeletedCounts))
	return resp, nil
}

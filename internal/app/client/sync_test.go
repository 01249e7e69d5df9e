package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	gosync "sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"initium/internal/app/client/store"
	"initium/internal/domain/collection"
	"initium/internal/domain/document"
	"initium/internal/domain/sync"
)

func newTestSyncer(t *testing.T, server *httptest.Server) (*Syncer, *store.Store, *Session) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "initium.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	client, session := newTestHTTPClient(t, server)
	return NewSyncer(st, client, session, slog.Default()), st, session
}

// syncServer is a minimal in-memory rendition of the remote sync endpoints.
type syncServer struct {
	mu       gosync.Mutex
	data     map[string][]document.Document
	requests atomic.Int32
	failPush map[string]bool
	failPull map[string]bool
}

func newSyncServer() *syncServer {
	return &syncServer{
		data:     make(map[string][]document.Document),
		failPush: make(map[string]bool),
		failPull: make(map[string]bool),
	}
}

func (s *syncServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.mu.Lock()
		defer s.mu.Unlock()

		switch {
		case r.URL.Path == "/api/sync/push":
			var req struct {
				Collection string              `json:"collection"`
				Data       []document.Document `json:"data"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			if s.failPush[req.Collection] {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"detail": "push rejected"})
				return
			}
			s.data[req.Collection] = req.Data
			json.NewEncoder(w).Encode(map[string]any{
				"success":      true,
				"synced_count": len(req.Data),
			})

		case r.URL.Path == "/api/sync/pull":
			names := collection.Synced
			if q := r.URL.Query().Get("collections"); q != "" {
				names = strings.Split(q, ",")
			}
			result := make(map[string][]document.Document)
			for _, name := range names {
				if s.failPull[name] {
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{"detail": "pull rejected"})
					return
				}
				if docs, ok := s.data[name]; ok {
					result[name] = docs
				}
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true, "data": result})

		case r.URL.Path == "/api/sync/migrate":
			var all map[string][]document.Document
			json.NewDecoder(r.Body).Decode(&all)
			total := 0
			reports := make(map[string]any)
			for name, docs := range all {
				s.data[name] = docs
				total += len(docs)
				reports[name] = map[string]any{"success": true, "synced_count": len(docs)}
			}
			json.NewEncoder(w).Encode(map[string]any{
				"success":      true,
				"total_synced": total,
				"collections":  reports,
			})

		case r.URL.Path == "/api/sync/clear" && r.Method == http.MethodDelete:
			names := collection.Synced
			if q := r.URL.Query().Get("collections"); q != "" {
				names = strings.Split(q, ",")
			}
			deleted := make(map[string]int)
			for _, name := range names {
				deleted[name] = len(s.data[name])
				delete(s.data, name)
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true, "deleted_counts": deleted})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func TestSyncer_GuestNeverTouchesNetwork(t *testing.T) {
	remote := newSyncServer()
	server := httptest.NewServer(remote.handler())
	defer server.Close()

	syncer, st, session := newTestSyncer(t, server)
	require.NoError(t, session.BeginGuest())
	require.NoError(t, st.Put(context.Background(), collection.Quests, document.Document{"id": "quest-1"}))

	_, err := syncer.PushCollection(context.Background(), collection.Quests)
	assert.ErrorIs(t, err, sync.ErrNotAuthenticated)

	_, err = syncer.PullCollection(context.Background(), collection.Quests)
	assert.ErrorIs(t, err, sync.ErrNotAuthenticated)

	_, err = syncer.SyncAll(context.Background())
	assert.ErrorIs(t, err, sync.ErrNotAuthenticated)

	_, err = syncer.MigrateToCloud(context.Background())
	assert.ErrorIs(t, err, sync.ErrNotAuthenticated)

	assert.Equal(t, int32(0), remote.requests.Load(), "guest mode must stay offline")
}

func TestSyncer_EmptyCollectionShortCircuits(t *testing.T) {
	remote := newSyncServer()
	server := httptest.NewServer(remote.handler())
	defer server.Close()

	syncer, _, session := newTestSyncer(t, server)
	require.NoError(t, session.SetTokens("access", "refresh"))

	result, err := syncer.PushCollection(context.Background(), collection.Quests)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Synced)
	assert.Equal(t, int32(0), remote.requests.Load())
}

func TestSyncer_PushPullRoundTrip(t *testing.T) {
	remote := newSyncServer()
	server := httptest.NewServer(remote.handler())
	defer server.Close()

	ctx := context.Background()
	syncer, st, session := newTestSyncer(t, server)
	require.NoError(t, session.SetTokens("access", "refresh"))

	require.NoError(t, st.Put(ctx, collection.Quests, document.Document{
		"id": "quest-1", "title": "Apprendre React avancé",
	}))

	pushed, err := syncer.PushCollection(ctx, collection.Quests)
	require.NoError(t, err)
	assert.True(t, pushed.Success)
	assert.Equal(t, 1, pushed.Synced)

	require.NoError(t, st.Delete(ctx, collection.Quests, "quest-1"))

	pulled, err := syncer.PullCollection(ctx, collection.Quests)
	require.NoError(t, err)
	assert.True(t, pulled.Success)
	assert.Equal(t, 1, pulled.Synced)

	doc, err := st.Get(ctx, collection.Quests, "quest-1")
	require.NoError(t, err)
	assert.Equal(t, "Apprendre React avancé", doc["title"])
}

func TestSyncer_SyncAllContinuesPastFailures(t *testing.T) {
	remote := newSyncServer()
	remote.failPush[collection.Quests] = true
	server := httptest.NewServer(remote.handler())
	defer server.Close()

	ctx := context.Background()
	syncer, st, session := newTestSyncer(t, server)
	require.NoError(t, session.SetTokens("access", "refresh"))

	require.NoError(t, st.Put(ctx, collection.Quests, document.Document{"id": "quest-1"}))
	require.NoError(t, st.Put(ctx, collection.Notes, document.Document{"id": "note-1"}))

	result, err := syncer.SyncAll(ctx)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Collections[collection.Quests].PushError)
	assert.True(t, result.Collections[collection.Notes].OK())
	assert.Equal(t, 1, result.Collections[collection.Notes].Pushed)
	assert.Equal(t, 1, result.Pushed)
}

func TestSyncer_SyncAllContinuesPastPullFailures(t *testing.T) {
	remote := newSyncServer()
	remote.failPull[collection.Quests] = true
	server := httptest.NewServer(remote.handler())
	defer server.Close()

	ctx := context.Background()
	syncer, st, session := newTestSyncer(t, server)
	require.NoError(t, session.SetTokens("access", "refresh"))

	require.NoError(t, st.Put(ctx, collection.Quests, document.Document{"id": "quest-1"}))
	require.NoError(t, st.Put(ctx, collection.Notes, document.Document{"id": "note-1"}))

	result, err := syncer.SyncAll(ctx)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Collections[collection.Quests].PullError)
	assert.Empty(t, result.Collections[collection.Quests].PushError, "push side went through")
	assert.True(t, result.Collections[collection.Notes].OK())
	assert.Equal(t, 1, result.Collections[collection.Notes].Pulled)
}

func TestSyncer_SyncAllReportsEveryCollection(t *testing.T) {
	remote := newSyncServer()
	server := httptest.NewServer(remote.handler())
	defer server.Close()

	syncer, _, session := newTestSyncer(t, server)
	require.NoError(t, session.SetTokens("access", "refresh"))

	result, err := syncer.SyncAll(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Len(t, result.Collections, len(collection.Synced))
	assert.False(t, syncer.IsSyncing())
	assert.False(t, syncer.LastSync().IsZero())
}

func TestSyncer_RejectsOverlappingBatches(t *testing.T) {
	remote := newSyncServer()
	server := httptest.NewServer(remote.handler())
	defer server.Close()

	syncer, _, session := newTestSyncer(t, server)
	require.NoError(t, session.SetTokens("access", "refresh"))

	require.NoError(t, syncer.begin())
	defer syncer.end()

	_, err := syncer.SyncAll(context.Background())
	assert.ErrorIs(t, err, sync.ErrSyncInProgress)

	_, err = syncer.MigrateToCloud(context.Background())
	assert.ErrorIs(t, err, sync.ErrSyncInProgress)
}

func TestSyncer_MigrateOmitsEmptyCollections(t *testing.T) {
	remote := newSyncServer()
	server := httptest.NewServer(remote.handler())
	defer server.Close()

	ctx := context.Background()
	syncer, st, session := newTestSyncer(t, server)
	require.NoError(t, session.SetTokens("access", "refresh"))

	for i, id := range []string{"quest-1", "quest-2", "quest-3"} {
		require.NoError(t, st.Put(ctx, collection.Quests, document.Document{"id": id, "order": i}))
	}
	require.NoError(t, st.Put(ctx, collection.Notes, document.Document{"id": "note-1"}))
	require.NoError(t, st.Put(ctx, collection.Notes, document.Document{"id": "note-2"}))

	resp, err := syncer.MigrateToCloud(ctx)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, 5, resp.TotalSynced)
	assert.Len(t, resp.Collections, 2)
	assert.Equal(t, 3, resp.Collections[collection.Quests].SyncedCount)
	assert.Equal(t, 2, resp.Collections[collection.Notes].SyncedCount)
	_, habitsSent := resp.Collections[collection.Habits]
	assert.False(t, habitsSent, "empty collections must be omitted")
}

func TestSyncer_MigrateEmptyDatasetStaysOffline(t *testing.T) {
	remote := newSyncServer()
	server := httptest.NewServer(remote.handler())
	defer server.Close()

	syncer, _, session := newTestSyncer(t, server)
	require.NoError(t, session.SetTokens("access", "refresh"))

	resp, err := syncer.MigrateToCloud(context.Background())
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, 0, resp.TotalSynced)
	assert.Equal(t, int32(0), remote.requests.Load())
}

func TestSyncer_PullOverwritesConcurrentLocalEdit(t *testing.T) {
	// Last write wins: a pull clobbers a local edit made since the push.
	remote := newSyncServer()
	server := httptest.NewServer(remote.handler())
	defer server.Close()

	ctx := context.Background()
	syncer, st, session := newTestSyncer(t, server)
	require.NoError(t, session.SetTokens("access", "refresh"))

	require.NoError(t, st.Put(ctx, collection.Notes, document.Document{"id": "note-1", "title": "A"}))
	_, err := syncer.PushCollection(ctx, collection.Notes)
	require.NoError(t, err)

	remote.mu.Lock()
	remote.data[collection.Notes] = []document.Document{{"id": "note-1", "title": "B"}}
	remote.mu.Unlock()

	require.NoError(t, st.Put(ctx, collection.Notes, document.Document{"id": "note-1", "title": "local edit"}))

	_, err = syncer.PullCollection(ctx, collection.Notes)
	require.NoError(t, err)

	doc, err := st.Get(ctx, collection.Notes, "note-1")
	require.NoError(t, err)
	assert.Equal(t, "B", doc["title"])
}

func TestSyncer_ClearCloudKeepsLocalData(t *testing.T) {
	remote := newSyncServer()
	server := httptest.NewServer(remote.handler())
	defer server.Close()

	ctx := context.Background()
	syncer, st, session := newTestSyncer(t, server)
	require.NoError(t, session.SetTokens("access", "refresh"))

	require.NoError(t, st.Put(ctx, collection.Quests, document.Document{"id": "quest-1"}))
	_, err := syncer.PushCollection(ctx, collection.Quests)
	require.NoError(t, err)

	resp, err := syncer.ClearCloud(ctx)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.DeletedCounts[collection.Quests])
	remote.mu.Lock()
	assert.Empty(t, remote.data[collection.Quests])
	remote.mu.Unlock()

	_, err = st.Get(ctx, collection.Quests, "quest-1")
	assert.NoError(t, err, "local data survives a cloud clear")
}

func TestSyncer_LastSyncAdvances(t *testing.T) {
	remote := newSyncServer()
	server := httptest.NewServer(remote.handler())
	defer server.Close()

	syncer, _, session := newTestSyncer(t, server)
	require.NoError(t, session.SetTokens("access", "refresh"))

	require.True(t, syncer.LastSync().IsZero())
	before := time.Now()

	_, err := syncer.SyncAll(context.Background())
	require.NoError(t, err)

	assert.False(t, syncer.LastSync().Before(before))
}

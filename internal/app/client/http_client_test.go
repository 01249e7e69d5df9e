package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"initium/internal/app/client/config"
	"initium/internal/domain/collection"
	"initium/internal/domain/document"
)

func newTestHTTPClient(t *testing.T, server *httptest.Server) (*httpClient, *Session) {
	t.Helper()

	store := NewFileCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))
	session := NewSession(store, slog.Default())

	cfg := &config.Config{
		ServerAddress: strings.TrimPrefix(server.URL, "http://"),
	}

	client, err := NewHTTPClient(cfg, session, slog.Default())
	require.NoError(t, err)
	return client, session
}

func TestHTTPClient_BearerHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer server.Close()

	client, session := newTestHTTPClient(t, server)
	require.NoError(t, session.SetTokens("access-token", "refresh-token"))

	_, err := client.PullCollections(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer access-token", gotAuth)
}

func TestHTTPClient_RefreshOnceThenRetry(t *testing.T) {
	var apiCalls, refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/refresh" {
			refreshCalls.Add(1)
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "refresh-token", body["refresh_token"])
			json.NewEncoder(w).Encode(map[string]string{
				"access_token": "fresh-access",
				"token_type":   "bearer",
			})
			return
		}

		apiCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh-access" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Token expired"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "synced_count": 1})
	}))
	defer server.Close()

	client, session := newTestHTTPClient(t, server)
	require.NoError(t, session.SetTokens("stale-access", "refresh-token"))

	resp, err := client.PushCollection(context.Background(), collection.Quests, []document.Document{
		{"id": "quest-1"},
	}, time.Time{})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, int32(2), apiCalls.Load(), "expected exactly one retry")
	assert.Equal(t, int32(1), refreshCalls.Load(), "expected exactly one refresh")
	assert.Equal(t, "fresh-access", session.AccessToken())
}

func TestHTTPClient_SecondRejectionIsNotRetried(t *testing.T) {
	var apiCalls, refreshCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/refresh" {
			refreshCalls.Add(1)
			json.NewEncoder(w).Encode(map[string]string{
				"access_token": "fresh-access",
				"token_type":   "bearer",
			})
			return
		}

		apiCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "still rejected"})
	}))
	defer server.Close()

	client, session := newTestHTTPClient(t, server)
	require.NoError(t, session.SetTokens("stale-access", "refresh-token"))

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still rejected")
	assert.Equal(t, int32(2), apiCalls.Load(), "a rejected retry must not loop")
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, "fresh-access", session.AccessToken())
}

func TestHTTPClient_RefreshFailureTearsDownSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/refresh" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid refresh token"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Token expired"})
	}))
	defer server.Close()

	client, session := newTestHTTPClient(t, server)
	require.NoError(t, session.SetTokens("stale-access", "dead-refresh"))

	_, err := client.PullCollections(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")
	assert.False(t, session.Authenticated())
}

func TestHTTPClient_NoRefreshWithoutRefreshToken(t *testing.T) {
	var apiCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"})
	}))
	defer server.Close()

	client, _ := newTestHTTPClient(t, server)

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not authenticated")
	assert.Equal(t, int32(1), apiCalls.Load())
}

func TestHTTPClient_LoginInstallsTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "access",
			"refresh_token": "refresh",
			"token_type":    "bearer",
		})
	}))
	defer server.Close()

	client, session := newTestHTTPClient(t, server)

	require.NoError(t, client.Login(context.Background(), "jean@initium.app", "secret123"))
	assert.True(t, session.CanSync())
	assert.Equal(t, "access", session.AccessToken())
	assert.Equal(t, "refresh", session.RefreshToken())
}

func TestHTTPClient_ErrorDetailSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Email already registered"})
	}))
	defer server.Close()

	client, _ := newTestHTTPClient(t, server)

	err := client.Register(context.Background(), "jean@initium.app", "jean", "secret123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email already registered")
}

func TestHTTPClient_PullRevivesDates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				collection.Quests: []map[string]any{
					{"id": "quest-1", "created_at": "2026-01-15T10:30:00Z", "title": "Titre"},
				},
			},
		})
	}))
	defer server.Close()

	client, session := newTestHTTPClient(t, server)
	require.NoError(t, session.SetTokens("access", "refresh"))

	resp, err := client.PullCollections(context.Background(), []string{collection.Quests})
	require.NoError(t, err)

	doc := resp.Data[collection.Quests][0]
	created, ok := doc["created_at"].(time.Time)
	require.True(t, ok, "created_at should be revived into time.Time")
	assert.Equal(t, 2026, created.Year())
	assert.Equal(t, "Titre", doc["title"])
}

func TestHTTPClient_PullCollectionsQuery(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("collections")
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer server.Close()

	client, _ := newTestHTTPClient(t, server)

	_, err := client.PullCollections(context.Background(), []string{collection.Quests, collection.Notes})
	require.NoError(t, err)
	assert.Equal(t, "quests,notes", gotQuery)
}

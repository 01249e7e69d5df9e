package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func newTestSession(t *testing.T) (*Session, *FileCredentialStore) {
	t.Helper()
	store := NewFileCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))
	return NewSession(store, slog.Default()), store
}

func TestFileCredentialStore_LoadMissing(t *testing.T) {
	store := NewFileCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))

	creds, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, creds.AccessToken)
	assert.False(t, creds.Guest)
}

func TestFileCredentialStore_RoundTrip(t *testing.T) {
	store := NewFileCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))

	require.NoError(t, store.Save(&Credentials{
		AccessToken:  "access",
		RefreshToken: "refresh",
	}))

	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "access", creds.AccessToken)
	assert.Equal(t, "refresh", creds.RefreshToken)

	require.NoError(t, store.Clear())
	creds, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, creds.AccessToken)
}

func TestSession_RestoreTokens(t *testing.T) {
	session, store := newTestSession(t)
	require.NoError(t, store.Save(&Credentials{
		AccessToken:  "access",
		RefreshToken: "refresh",
	}))

	require.NoError(t, session.RestoreSession())

	assert.True(t, session.Authenticated())
	assert.False(t, session.Guest())
	assert.True(t, session.CanSync())
	assert.False(t, session.StaleGuest())
}

func TestSession_RestoreGuest(t *testing.T) {
	session, store := newTestSession(t)
	require.NoError(t, store.Save(&Credentials{Guest: true}))

	require.NoError(t, session.RestoreSession())

	assert.False(t, session.Authenticated())
	assert.True(t, session.Guest())
	assert.False(t, session.CanSync())
}

func TestSession_RestoreTokensBeatStaleGuestFlag(t *testing.T) {
	session, store := newTestSession(t)
	require.NoError(t, store.Save(&Credentials{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Guest:        true,
	}))

	require.NoError(t, session.RestoreSession())

	assert.True(t, session.Authenticated())
	assert.False(t, session.Guest())
	assert.True(t, session.StaleGuest())
}

func TestSession_ConfirmIdentityClearsStaleFlag(t *testing.T) {
	session, store := newTestSession(t)
	require.NoError(t, store.Save(&Credentials{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Guest:        true,
	}))
	require.NoError(t, session.RestoreSession())

	require.NoError(t, session.ConfirmIdentity())

	assert.False(t, session.StaleGuest())
	creds, err := store.Load()
	require.NoError(t, err)
	assert.False(t, creds.Guest)
	assert.Equal(t, "access", creds.AccessToken)
}

func TestSession_DropTokensKeepGuest(t *testing.T) {
	session, store := newTestSession(t)
	require.NoError(t, store.Save(&Credentials{
		AccessToken:  "rejected",
		RefreshToken: "rejected",
		Guest:        true,
	}))
	require.NoError(t, session.RestoreSession())

	require.NoError(t, session.DropTokensKeepGuest())

	assert.False(t, session.Authenticated())
	assert.True(t, session.Guest())
	creds, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, creds.AccessToken)
	assert.True(t, creds.Guest)
}

func TestSession_SetTokensLeavesGuestMode(t *testing.T) {
	session, _ := newTestSession(t)
	require.NoError(t, session.BeginGuest())
	require.True(t, session.Guest())

	require.NoError(t, session.SetTokens("access", "refresh"))

	assert.True(t, session.CanSync())
	assert.False(t, session.Guest())
	assert.Equal(t, "access", session.AccessToken())
	assert.Equal(t, "refresh", session.RefreshToken())
}

func TestSession_ReplaceAccessToken(t *testing.T) {
	session, store := newTestSession(t)
	require.NoError(t, session.SetTokens("old-access", "refresh"))

	require.NoError(t, session.ReplaceAccessToken("new-access"))

	assert.Equal(t, "new-access", session.AccessToken())
	assert.Equal(t, "refresh", session.RefreshToken())
	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "new-access", creds.AccessToken)
	assert.Equal(t, "refresh", creds.RefreshToken)
}

func TestSession_Clear(t *testing.T) {
	session, store := newTestSession(t)
	require.NoError(t, session.SetTokens("access", "refresh"))

	require.NoError(t, session.Clear())

	assert.False(t, session.Authenticated())
	assert.False(t, session.Guest())
	creds, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, creds.AccessToken)
}

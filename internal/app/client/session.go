package client

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/exp/slog"
)

// Credentials is the on-disk shape of the persisted session state. Tokens and
// the guest flag are mutually exclusive in a healthy state, but a crash between
// writes can leave both set; RestoreSession resolves that in favor of tokens.
type Credentials struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Guest        bool   `json:"is_guest,omitempty"`
}

// CredentialStore persists session credentials between runs.
type CredentialStore interface {
	Load() (*Credentials, error)
	Save(creds *Credentials) error
	Clear() error
}

// FileCredentialStore keeps credentials in a JSON file readable only by the
// owner.
type FileCredentialStore struct {
	path string
}

func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

func (s *FileCredentialStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Credentials{}, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return &creds, nil
}

func (s *FileCredentialStore) Save(creds *Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

func (s *FileCredentialStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// Session holds the in-memory authentication state and mirrors every change to
// the credential store.
type Session struct {
	mu    sync.RWMutex
	store CredentialStore
	log   *slog.Logger

	access  string
	refresh string
	guest   bool

	// staleGuest remembers that the persisted state carried both tokens and
	// the guest flag. If the tokens later turn out to be rejected, the session
	// falls back to guest mode instead of logging out entirely.
	staleGuest bool
}

func NewSession(store CredentialStore, log *slog.Logger) *Session {
	return &Session{
		store: store,
		log:   log,
	}
}

// RestoreSession rebuilds the session from persisted credentials. Stored
// tokens win over a stored guest flag: the flag is kept aside as stale until
// the tokens are confirmed against the remote identity endpoint.
func (s *Session) RestoreSession() error {
	creds, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if creds.AccessToken != "" {
		s.access = creds.AccessToken
		s.refresh = creds.RefreshToken
		s.guest = false
		s.staleGuest = creds.Guest
		if s.staleGuest {
			s.log.Warn("credentials and guest flag both persisted, trusting credentials")
		}
		return nil
	}

	s.guest = creds.Guest
	return nil
}

// Authenticated reports whether the session carries an access token.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access != ""
}

// Guest reports whether the session runs in local-only guest mode.
func (s *Session) Guest() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guest
}

// CanSync is the access gate for network sync: an authenticated, non-guest
// session.
func (s *Session) CanSync() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access != "" && !s.guest
}

// AccessToken returns the current access token, empty when anonymous.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// RefreshToken returns the current refresh token, empty when anonymous.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// SetTokens installs a fresh token pair, leaving guest mode, and persists the
// new state.
func (s *Session) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = access
	s.refresh = refresh
	s.guest = false
	s.staleGuest = false

	return s.store.Save(&Credentials{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

// ReplaceAccessToken swaps the access token after a successful refresh. The
// refresh token is unchanged.
func (s *Session) ReplaceAccessToken(access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = access
	return s.store.Save(&Credentials{
		AccessToken:  access,
		RefreshToken: s.refresh,
	})
}

// ConfirmIdentity marks the restored credentials as verified and clears any
// stale guest flag from the persisted state.
func (s *Session) ConfirmIdentity() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.staleGuest {
		return nil
	}
	s.staleGuest = false
	return s.store.Save(&Credentials{
		AccessToken:  s.access,
		RefreshToken: s.refresh,
	})
}

// BeginGuest enters local-only guest mode, dropping any tokens.
func (s *Session) BeginGuest() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = ""
	s.refresh = ""
	s.guest = true
	s.staleGuest = false

	return s.store.Save(&Credentials{Guest: true})
}

// DropTokensKeepGuest handles rejected restored credentials that coexisted
// with a persisted guest flag: the tokens go, guest mode stays.
func (s *Session) DropTokensKeepGuest() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = ""
	s.refresh = ""
	s.guest = true
	s.staleGuest = false

	return s.store.Save(&Credentials{Guest: true})
}

// StaleGuest reports whether the persisted state carried a guest flag next to
// credentials that have not been confirmed yet.
func (s *Session) StaleGuest() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.staleGuest
}

// Clear wipes the whole session state, in memory and on disk.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = ""
	s.refresh = ""
	s.guest = false
	s.staleGuest = false

	return s.store.Clear()
}

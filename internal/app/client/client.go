package client

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"initium/internal/app/client/config"
	"initium/internal/app/client/store"
	"initium/internal/domain/user"
)

// App wires the client together: persisted session, HTTP client, local store
// and sync orchestrator.
type App struct {
	config     *config.Config
	log        *slog.Logger
	session    *Session
	httpClient *httpClient
	store      *store.Store
	syncer     *Syncer
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	session := NewSession(NewFileCredentialStore(cfg.CredentialsPath), log)
	if err := session.RestoreSession(); err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	httpCl, err := NewHTTPClient(cfg, session, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init HTTP client: %w", err)
	}

	st, err := store.Open(cfg.DataPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	if err := st.Seed(context.Background()); err != nil {
		log.Warn("failed to seed starter dataset", "error", err)
	}

	app := &App{
		config:     cfg,
		log:        log,
		session:    session,
		httpClient: httpCl,
		store:      st,
	}
	app.syncer = NewSyncer(st, httpCl, session, log)

	return app, nil
}

// LoadUser resolves the current identity. Restored credentials are confirmed
// against the server; when they turn out rejected, a stale guest flag demotes
// the session back to guest mode instead of logging out entirely.
func (a *App) LoadUser(ctx context.Context) (*user.Identity, error) {
	if a.session.Guest() {
		return &user.GuestIdentity, nil
	}
	if !a.session.Authenticated() {
		return nil, fmt.Errorf("not authenticated, run: initium auth login")
	}

	// captured before the call: a failed refresh inside the client tears the
	// session down, losing the flag
	staleGuest := a.session.StaleGuest()

	identity, err := a.httpClient.Me(ctx)
	if err != nil {
		if staleGuest {
			a.log.Warn("stored credentials rejected, falling back to guest mode", "error", err)
			if dropErr := a.session.DropTokensKeepGuest(); dropErr != nil {
				return nil, fmt.Errorf("failed to demote session: %w", dropErr)
			}
			return &user.GuestIdentity, nil
		}

		a.log.Warn("stored credentials rejected, logging out", "error", err)
		if clearErr := a.session.Clear(); clearErr != nil {
			return nil, fmt.Errorf("failed to clear session: %w", clearErr)
		}
		return nil, err
	}

	if err := a.session.ConfirmIdentity(); err != nil {
		a.log.Warn("failed to persist confirmed session", "error", err)
	}
	return identity, nil
}

// Register creates a remote account.
func (a *App) Register(ctx context.Context, email, username, password string) error {
	if err := a.httpClient.Register(ctx, email, username, password); err != nil {
		return err
	}

	a.log.Info("user registered", "email", email)
	return nil
}

// Login authenticates and installs the session tokens.
func (a *App) Login(ctx context.Context, email, password string) error {
	if err := a.httpClient.Login(ctx, email, password); err != nil {
		return err
	}

	a.log.Info("login successful", "email", email)
	return nil
}

// Logout revokes the refresh token remotely and clears the local session. The
// local session is cleared even when the server call fails.
func (a *App) Logout(ctx context.Context) error {
	if a.session.Authenticated() {
		if err := a.httpClient.Logout(ctx); err != nil {
			a.log.Warn("failed to revoke session on server", "error", err)
		}
	}

	return a.session.Clear()
}

// BeginGuest switches to local-only guest mode.
func (a *App) BeginGuest() error {
	return a.session.BeginGuest()
}

// CheckConnection verifies that the server is reachable.
func (a *App) CheckConnection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return a.httpClient.HealthCheck(ctx)
}

func (a *App) Session() *Session {
	return a.session
}

func (a *App) Store() *store.Store {
	return a.store
}

func (a *App) Syncer() *Syncer {
	return a.syncer
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) Close() error {
	return a.store.Close()
}

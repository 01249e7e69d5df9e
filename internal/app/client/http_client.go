package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"initium/internal/app/client/config"
	"initium/internal/domain/document"
	"initium/internal/domain/sync"
	"initium/internal/domain/user"
)

type httpClient struct {
	client    *http.Client
	config    *config.Config
	log       *slog.Logger
	baseURL   string
	session   *Session
	userAgent string
}

func NewHTTPClient(cfg *config.Config, session *Session, log *slog.Logger) (*httpClient, error) {
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			DisableCompression:  false,
			DisableKeepAlives:   false,
			MaxIdleConnsPerHost: 10,
		},
	}

	return &httpClient{
		client:    client,
		config:    cfg,
		log:       log,
		baseURL:   cfg.BaseURL(),
		session:   session,
		userAgent: "Initium-Client/1.0",
	}, nil
}

// HealthCheck verifies that the server is reachable.
func (h *httpClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", h.baseURL+"/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status: %d", resp.StatusCode)
	}

	return nil
}

// doRequest sends one API request. The body is marshaled once; on a 401 with a
// refresh token at hand it refreshes the access token and re-dispatches the
// same bytes exactly once. A failed refresh tears the session down.
func (h *httpClient) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var jsonData []byte
	if body != nil {
		var err error
		jsonData, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	resp, err := h.dispatch(ctx, method, path, jsonData)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || h.session.RefreshToken() == "" {
		return resp, nil
	}
	resp.Body.Close()

	if err := h.refreshAccessToken(ctx); err != nil {
		if clearErr := h.session.Clear(); clearErr != nil {
			h.log.Error("failed to clear session after refresh failure", "error", clearErr)
		}
		return nil, fmt.Errorf("session expired: %w", err)
	}

	return h.dispatch(ctx, method, path, jsonData)
}

func (h *httpClient) dispatch(ctx context.Context, method, path string, jsonData []byte) (*http.Response, error) {
	var reqBody io.Reader
	if jsonData != nil {
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if token := h.session.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	h.log.Debug("sending request",
		"method", method,
		"url", req.URL.String(),
	)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

// refreshAccessToken exchanges the stored refresh token for a new access
// token. It deliberately bypasses doRequest so a 401 here cannot recurse.
func (h *httpClient) refreshAccessToken(ctx context.Context) error {
	jsonData, err := json.Marshal(user.RefreshRequest{
		RefreshToken: h.session.RefreshToken(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", h.baseURL+"/api/auth/refresh", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send refresh request: %w", err)
	}

	var refreshResp user.RefreshResponse
	if err := h.parseResponse(resp, &refreshResp); err != nil {
		return err
	}

	if err := h.session.ReplaceAccessToken(refreshResp.AccessToken); err != nil {
		return fmt.Errorf("failed to store refreshed token: %w", err)
	}

	h.log.Debug("access token refreshed")
	return nil
}

func (h *httpClient) parseResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	h.log.Debug("received response",
		"status", resp.StatusCode,
		"body", string(body),
	)

	if resp.StatusCode >= 400 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("server error: %s", errResp.Detail)
		}
		return fmt.Errorf("server error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

func (h *httpClient) Register(ctx context.Context, email, username, password string) error {
	req := user.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
	}

	resp, err := h.doRequest(ctx, "POST", "/api/auth/register", req)
	if err != nil {
		return err
	}

	return h.parseResponse(resp, nil)
}

// Login authenticates against the server and installs the returned token pair
// into the session.
func (h *httpClient) Login(ctx context.Context, email, password string) error {
	req := user.LoginRequest{
		Email:    email,
		Password: password,
	}

	resp, err := h.doRequest(ctx, "POST", "/api/auth/login", req)
	if err != nil {
		return err
	}

	var pair user.TokenPair
	if err := h.parseResponse(resp, &pair); err != nil {
		return err
	}

	return h.session.SetTokens(pair.AccessToken, pair.RefreshToken)
}

// Logout revokes the refresh token server-side. The local session is cleared
// by the caller regardless of the outcome.
func (h *httpClient) Logout(ctx context.Context) error {
	req := user.LogoutRequest{
		RefreshToken: h.session.RefreshToken(),
	}

	resp, err := h.doRequest(ctx, "POST", "/api/auth/logout", req)
	if err != nil {
		return err
	}

	return h.parseResponse(resp, nil)
}

// Me fetches the identity behind the current access token.
func (h *httpClient) Me(ctx context.Context) (*user.Identity, error) {
	resp, err := h.doRequest(ctx, "GET", "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var identity user.Identity
	if err := h.parseResponse(resp, &identity); err != nil {
		return nil, err
	}

	return &identity, nil
}

// PushCollection uploads one collection's documents.
func (h *httpClient) PushCollection(ctx context.Context, name string, docs []document.Document, lastSync time.Time) (*sync.PushResponse, error) {
	req := sync.PushRequest{
		Collection: name,
		Data:       docs,
		LastSync:   lastSync.UTC(),
	}

	resp, err := h.doRequest(ctx, "POST", "/api/sync/push", req)
	if err != nil {
		return nil, err
	}

	var pushResp sync.PushResponse
	if err := h.parseResponse(resp, &pushResp); err != nil {
		return nil, err
	}

	return &pushResp, nil
}

// PullCollections downloads the requested collections. ISO date strings in the
// returned documents are revived into time.Time values.
func (h *httpClient) PullCollections(ctx context.Context, names []string) (*sync.PullResponse, error) {
	path := "/api/sync/pull"
	if len(names) > 0 {
		path += "?collections=" + url.QueryEscape(strings.Join(names, ","))
	}

	resp, err := h.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var pullResp sync.PullResponse
	if err := h.parseResponse(resp, &pullResp); err != nil {
		return nil, err
	}

	for _, docs := range pullResp.Data {
		for _, doc := range docs {
			doc.ReviveDates()
		}
	}

	return &pullResp, nil
}

// Migrate uploads the whole local dataset in one request.
func (h *httpClient) Migrate(ctx context.Context, all map[string][]document.Document) (*sync.MigrateResponse, error) {
	resp, err := h.doRequest(ctx, "POST", "/api/sync/migrate", all)
	if err != nil {
		return nil, err
	}

	var migrateResp sync.MigrateResponse
	if err := h.parseResponse(resp, &migrateResp); err != nil {
		return nil, err
	}

	return &migrateResp, nil
}

// ClearCloud deletes the user's documents server-side, all synced collections
// when the filter is empty.
func (h *httpClient) ClearCloud(ctx context.Context, names []string) (*sync.ClearResponse, error) {
	path := "/api/sync/clear"
	if len(names) > 0 {
		path += "?collections=" + url.QueryEscape(strings.Join(names, ","))
	}

	resp, err := h.doRequest(ctx, "DELETE", path, nil)
	if err != nil {
		return nil, err
	}

	var clearResp sync.ClearResponse
	if err := h.parseResponse(resp, &clearResp); err != nil {
		return nil, err
	}

	return &clearResp, nil
}

package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"initium/internal/domain/user"
	"initium/internal/utils/token"
)

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type Servicer interface {
	Issue(ctx context.Context, userID string) (user.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Revoke(ctx context.Context, refreshToken string) error
	ValidateAccess(tokenString string) (string, error)
}

// Service issues short-lived JWT access tokens paired with opaque refresh
// tokens stored sha256-hashed with an expiry.
type Service struct {
	repo       Repository
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        *slog.Logger
}

func NewService(repo Repository, secret string, accessTTL, refreshTTL time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

func (s *Service) Issue(ctx context.Context, userID string) (user.TokenPair, error) {
	access, err := token.New(s.secret, userID, s.accessTTL)
	if err != nil {
		return user.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}

	refreshBytes := make([]byte, 32)
	if _, err := rand.Read(refreshBytes); err != nil {
		return user.TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}
	refresh := base64.URLEncoding.EncodeToString(refreshBytes)

	expiresAt := time.Now().Add(s.refreshTTL)
	if err := s.repo.Create(ctx, userID, hashToken(refresh), expiresAt); err != nil {
		return user.TokenPair{}, fmt.Errorf("save refresh token: %w", err)
	}

	return user.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The refresh
// token itself stays valid until its own expiry.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.repo.Validate(ctx, hashToken(refreshToken))
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	access, err := token.New(s.secret, userID, s.accessTTL)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}

	s.log.Debug("access token refreshed", "user_id", userID)
	return access, nil
}

func (s *Service) Revoke(ctx context.Context, refreshToken string) error {
	return s.repo.Delete(ctx, hashToken(refreshToken))
}

func (s *Service) ValidateAccess(tokenString string) (string, error) {
	return token.Parse(s.secret, tokenString)
}

func hashToken(t string) string {
	sum := sha256.Sum256([]byte(t))
	return hex.EncodeToString(sum[:])
}

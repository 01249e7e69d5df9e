package auth

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	authMW "initium/internal/app/server/api/http/middleware/auth"
	"initium/internal/domain/session"
	"initium/internal/domain/user"
)

type Handler struct {
	service        user.Servicer
	session        session.Servicer
	log            *slog.Logger
	middleware     huma.Middlewares
	authMiddleware huma.Middlewares
}

func NewHandler(service user.Servicer, sessionService session.Servicer, log *slog.Logger, middleware, authMiddleware huma.Middlewares) *Handler {
	return &Handler{
		service:        service,
		session:        sessionService,
		log:            log,
		middleware:     middleware,
		authMiddleware: authMiddleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.loginOp(), h.login)
	huma.Register(api, h.refreshOp(), h.refresh)
	huma.Register(api, h.logoutOp(), h.logout)
	huma.Register(api, h.meOp(), h.me)
}

func (h *Handler) register(ctx context.Context, input *registerInput) (*registerOutput, error) {
	u, err := h.service.Register(ctx, input.Body.Email, input.Body.Username, input.Body.Password)
	switch {
	case errors.Is(err, user.ErrInvalidInput):
		return nil, huma.Error400BadRequest(err.Error())
	case errors.Is(err, user.ErrEmailTaken):
		return nil, huma.Error409Conflict("Email already registered")
	case errors.Is(err, user.ErrUsernameTaken):
		return nil, huma.Error409Conflict("Username already taken")
	case err != nil:
		h.log.Error("registration failed", "error", err)
		return nil, huma.Error500InternalServerError("Registration failed")
	}

	return &registerOutput{Body: u.Identity()}, nil
}

func (h *Handler) login(ctx context.Context, input *loginInput) (*loginOutput, error) {
	u, err := h.service.Authenticate(ctx, input.Body.Email, input.Body.Password)
	switch {
	case errors.Is(err, user.ErrInvalidAuth):
		return nil, huma.Error401Unauthorized("Invalid email or password")
	case errors.Is(err, user.ErrDisabled):
		return nil, huma.Error403Forbidden("Account is disabled")
	case err != nil:
		h.log.Error("authentication failed", "error", err)
		return nil, huma.Error500InternalServerError("Login failed")
	}

	pair, err := h.session.Issue(ctx, u.ID)
	if err != nil {
		h.log.Error("failed to issue session", "user_id", u.ID, "error", err)
		return nil, huma.Error500InternalServerError("Login failed")
	}

	return &loginOutput{Body: pair}, nil
}

func (h *Handler) refresh(ctx context.Context, input *refreshInput) (*refreshOutput, error) {
	access, err := h.session.Refresh(ctx, input.Body.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, huma.Error401Unauthorized("Invalid refresh token")
		}
		h.log.Error("refresh failed", "error", err)
		return nil, huma.Error500InternalServerError("Refresh failed")
	}

	return &refreshOutput{
		Body: user.RefreshResponse{
			AccessToken: access,
			TokenType:   "bearer",
		},
	}, nil
}

func (h *Handler) logout(ctx context.Context, input *logoutInput) (*logoutOutput, error) {
	if err := h.session.Revoke(ctx, input.Body.RefreshToken); err != nil {
		h.log.Warn("failed to revoke refresh token", "error", err)
	}

	return &logoutOutput{Body: LogoutResponse{Message: "Logged out"}}, nil
}

func (h *Handler) me(ctx context.Context, _ *meInput) (*meOutput, error) {
	userID, ok := authMW.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Not authenticated")
	}

	u, err := h.service.Get(ctx, userID)
	if err != nil {
		return nil, huma.Error401Unauthorized("User not found")
	}

	return &meOutput{Body: u.Identity()}, nil
}

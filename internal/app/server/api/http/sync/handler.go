package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	authMW "initium/internal/app/server/api/http/middleware/auth"
	"initium/internal/domain/sync"
)

type Handler struct {
	service    sync.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service sync.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.pushOp(), h.push)
	huma.Register(api, h.pullOp(), h.pull)
	huma.Register(api, h.migrateOp(), h.migrate)
	huma.Register(api, h.clearOp(), h.clear)
}

func (h *Handler) push(ctx context.Context, input *pushInput) (*pushOutput, error) {
	userID, ok := authMW.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Not authenticated")
	}

	count, err := h.service.Push(ctx, userID, input.Body.Collection, input.Body.Data)
	if err != nil {
		if errors.Is(err, sync.ErrUnknownCollection) {
			return nil, huma.Error400BadRequest(err.Error())
		}
		h.log.Error("push failed", "collection", input.Body.Collection, "error", err)
		return nil, huma.Error500InternalServerError("Push failed")
	}

	return &pushOutput{
		Body: sync.PushResponse{
			Success:     true,
			SyncedCount: count,
			Message:     fmt.Sprintf("Synced %d documents", count),
		},
	}, nil
}

func (h *Handler) pull(ctx context.Context, input *pullInput) (*pullOutput, error) {
	userID, ok := authMW.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Not authenticated")
	}

	data, err := h.service.Pull(ctx, userID, splitNames(input.Collections))
	if err != nil {
		h.log.Error("pull failed", "error", err)
		return nil, huma.Error500InternalServerError("Pull failed")
	}

	return &pullOutput{
		Body: sync.PullResponse{
			Success:  true,
			Data:     data,
			LastSync: time.Now().UTC(),
		},
	}, nil
}

func (h *Handler) migrate(ctx context.Context, input *migrateInput) (*migrateOutput, error) {
	userID, ok := authMW.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Not authenticated")
	}

	resp, err := h.service.Migrate(ctx, userID, input.Body)
	if err != nil {
		h.log.Error("migration failed", "error", err)
		return nil, huma.Error500InternalServerError("Migration failed")
	}

	return &migrateOutput{Body: *resp}, nil
}

func (h *Handler) clear(ctx context.Context, input *clearInput) (*clearOutput, error) {
	userID, ok := authMW.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Not authenticated")
	}

	deleted, err := h.service.Clear(ctx, userID, splitNames(input.Collections))
	if err != nil {
		h.log.Error("clear failed", "error", err)
		return nil, huma.Error500InternalServerError("Clear failed")
	}

	total := 0
	for _, n := range deleted {
		total += n
	}

	return &clearOutput{
		Body: sync.ClearResponse{
			Success:       true,
			DeletedCounts: deleted,
			Message:       fmt.Sprintf("Deleted %d documents", total),
		},
	}, nil
}

func splitNames(raw string) []string {
	if raw == "" {
		return nil
	}
	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

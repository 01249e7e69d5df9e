package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) pushOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-push",
		Method:      http.MethodPost,
		Path:        "/api/sync/push",
		Summary:     "Push one collection",
		Description: "Upserts the pushed documents of a single collection",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) pullOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-pull",
		Method:      http.MethodGet,
		Path:        "/api/sync/pull",
		Summary:     "Pull collections",
		Description: "Returns the user's documents for the requested collections",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) migrateOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-migrate",
		Method:      http.MethodPost,
		Path:        "/api/sync/migrate",
		Summary:     "Migrate a full local dataset",
		Description: "Ingests every pushed collection, reporting per collection",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) clearOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-clear",
		Method:      http.MethodDelete,
		Path:        "/api/sync/clear",
		Summary:     "Clear cloud data",
		Description: "Deletes the user's documents for the requested collections",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

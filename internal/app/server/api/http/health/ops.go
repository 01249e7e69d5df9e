package health

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) healthCheckOp() huma.Operation {
	return huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/v1/health",
		Summary:     "Liveness check",
		Description: "Reports whether the sync service is up. Used by clients to decide between online and offline mode.",
		Tags:        []string{"health"},
		Middlewares: h.middleware,
	}
}

package sync

import (
	"time"

	"initium/internal/domain/document"
)

// Wire formats exchanged with the remote sync endpoints.

type PushRequest struct {
	Collection string              `json:"collection"`
	Data       []document.Document `json:"data"`
	LastSync   time.Time           `json:"last_sync"`
}

type PushResponse struct {
	Success     bool   `json:"success"`
	SyncedCount int    `json:"synced_count"`
	Message     string `json:"message"`
}

type PullResponse struct {
	Success  bool                           `json:"success"`
	Data     map[string][]document.Document `json:"data"`
	LastSync time.Time                      `json:"last_sync"`
}

// CollectionReport is the per-collection slice of a migrate response.
type CollectionReport struct {
	Success     bool   `json:"success"`
	SyncedCount int    `json:"synced_count,omitempty"`
	Message     string `json:"message"`
}

type MigrateResponse struct {
	Success     bool                        `json:"success"`
	TotalSynced int                         `json:"total_synced"`
	Collections map[string]CollectionReport `json:"collections"`
	Message     string                      `json:"message"`
}

type ClearResponse struct {
	Success       bool           `json:"success"`
	DeletedCounts map[string]int `json:"deleted_counts"`
	Message       string         `json:"message"`
}

// Client-side outcomes. These are ephemeral: they drive CLI feedback and batch
// totals, never persistence.

// Result is the outcome of a single push, pull or migrate operation.
type Result struct {
	Success bool   `json:"success"`
	Synced  int    `json:"synced"`
	Error   string `json:"error,omitempty"`
}

// CollectionStatus records how one collection fared inside a batch. A batch
// that swallowed a failure is distinguishable from a clean one by inspecting
// these entries.
type CollectionStatus struct {
	Pushed    int    `json:"pushed"`
	Pulled    int    `json:"pulled"`
	PushError string `json:"push_error,omitempty"`
	PullError string `json:"pull_error,omitempty"`
}

func (c *CollectionStatus) OK() bool {
	return c.PushError == "" && c.PullError == ""
}

// BatchResult aggregates a full SyncAll pass. Success is true only when every
// collection pushed and pulled cleanly.
type BatchResult struct {
	Success     bool                         `json:"success"`
	Pushed      int                          `json:"pushed"`
	Pulled      int                          `json:"pulled"`
	Collections map[string]*CollectionStatus `json:"collections"`
	StartedAt   time.Time                    `json:"started_at"`
	FinishedAt  time.Time                    `json:"finished_at"`
}

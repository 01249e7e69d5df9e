package sync

import (
	"initium/internal/domain/document"
	"initium/internal/domain/sync"
)

type pushInput struct {
	Body sync.PushRequest
}

type pushOutput struct {
	Body sync.PushResponse
}

type pullInput struct {
	Collections string `query:"collections" doc:"Comma-separated collection names, empty for all synced collections"`
}

type pullOutput struct {
	Body sync.PullResponse
}

type migrateInput struct {
	Body map[string][]document.Document
}

type migrateOutput struct {
	Body sync.MigrateResponse
}

type clearInput struct {
	Collections string `query:"collections" doc:"Comma-separated collection names, empty for all synced collections"`
}

type clearOutput struct {
	Body sync.ClearResponse
}

package sync

import "errors"

var (
	// ErrNotAuthenticated gates every sync operation: the session is guest or
	// anonymous and must never touch the network.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSyncInProgress rejects overlapping SyncAll/MigrateToCloud invocations.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrUnknownCollection rejects collection names outside the fixed sync list.
	ErrUnknownCollection = errors.New("unknown collection")
)

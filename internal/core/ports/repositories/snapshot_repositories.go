package repositories

import (
	"context"

	"github.com/SscSPs/bodega_ledger/internal/core/domain"
)

// SnapshotReader loads the persisted data slot.
type SnapshotReader interface {
	// LoadSnapshot returns every tenant ledger. A store that has never been written
	// returns an empty snapshot and no error.
	LoadSnapshot(ctx context.Context) (domain.Snapshot, error)
}

// SnapshotWriter replaces the persisted data slot as a whole.
type SnapshotWriter interface {
	// SaveSnapshot overwrites the stored snapshot with snapshot.
	SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error
}

// SnapshotStore combines both sides of the data slot.
type SnapshotStore interface {
	SnapshotReader
	SnapshotWriter
}

// SessionStore persists the active principal in its own slot so a login survives a
// restart.
type SessionStore interface {
	// LoadSession returns the stored record, or nil when nobody is logged in.
	LoadSession(ctx context.Context) (*domain.SessionRecord, error)

	// SaveSession overwrites the stored record.
	SaveSession(ctx context.Context, record domain.SessionRecord) error

	// ClearSession removes the stored record. Clearing an empty slot is not an error.
	ClearSession(ctx context.Context) error
}

// Store is implemented by adapters that hold both slots.
type Store interface {
	SnapshotStore
	SessionStore
}

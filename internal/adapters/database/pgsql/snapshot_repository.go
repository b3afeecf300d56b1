package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/bodega_ledger/internal/apperrors"
	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bodega_ledger/internal/core/ports/repositories"
)

const (
	slotData    = "data"
	slotSession = "session"
)

// snapshotRepository stores each slot as one JSONB row of ledger_snapshots.
type snapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new repository for the data and session slots.
func NewSnapshotRepository(pool *pgxpool.Pool) portsrepo.Store {
	return &snapshotRepository{pool: pool}
}

func (r *snapshotRepository) loadSlot(ctx context.Context, slot string) ([]byte, error) {
	query := `SELECT payload FROM ledger_snapshots WHERE slot = $1;`

	var payload []byte
	err := r.pool.QueryRow(ctx, query, slot).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewAppError(500, fmt.Sprintf("failed to load slot %s", slot), err)
	}
	return payload, nil
}

// saveSlot upserts the slot inside a transaction so a failed write leaves the previous
// payload in place.
func (r *snapshotRepository) saveSlot(ctx context.Context, slot string, payload []byte) error {
	query := `
		INSERT INTO ledger_snapshots (slot, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (slot) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at;
	`
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query, slot, string(payload), time.Now().UTC()); err != nil {
			return apperrors.NewAppError(500, fmt.Sprintf("failed to save slot %s", slot), err)
		}
		return nil
	})
}

func (r *snapshotRepository) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	payload, err := r.loadSlot(ctx, slotData)
	if err != nil {
		return nil, err
	}
	snapshot := domain.Snapshot{}
	if payload == nil {
		return snapshot, nil
	}
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode snapshot", err)
	}
	return snapshot, nil
}

func (r *snapshotRepository) SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode snapshot", err)
	}
	return r.saveSlot(ctx, slotData, payload)
}

func (r *snapshotRepository) LoadSession(ctx context.Context) (*domain.SessionRecord, error) {
	payload, err := r.loadSlot(ctx, slotSession)
	if err != nil || payload == nil {
		return nil, err
	}
	var record domain.SessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode session", err)
	}
	return &record, nil
}

func (r *snapshotRepository) SaveSession(ctx context.Context, record domain.SessionRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return apperrors.NewAppError(500, "failed to encode session", err)
	}
	return r.saveSlot(ctx, slotSession, payload)
}

func (r *snapshotRepository) ClearSession(ctx context.Context) error {
	query := `DELETE FROM ledger_snapshots WHERE slot = $1;`
	if _, err := r.pool.Exec(ctx, query, slotSession); err != nil {
		return apperrors.NewAppError(500, "failed to clear session", err)
	}
	return nil
}

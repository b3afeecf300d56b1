// Package memory keeps both slots in process memory. Payloads are stored encoded so a
// caller can never alias stored state.
package memory

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/SscSPs/bodega_ledger/internal/apperrors"
	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bodega_ledger/internal/core/ports/repositories"
)

type Store struct {
	mu      sync.Mutex
	data    []byte
	session []byte
	saves   int
}

func New() *Store {
	return &Store{}
}

var _ portsrepo.Store = (*Store)(nil)

func (s *Store) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := domain.Snapshot{}
	if s.data == nil {
		return snapshot, nil
	}
	if err := json.Unmarshal(s.data, &snapshot); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to decode snapshot", err)
	}
	return snapshot, nil
}

func (s *Store) SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to encode snapshot", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = raw
	s.saves++
	return nil
}

func (s *Store) LoadSession(ctx context.Context) (*domain.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, nil
	}
	var record domain.SessionRecord
	if err := json.Unmarshal(s.session, &record); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to decode session", err)
	}
	return &record, nil
}

func (s *Store) SaveSession(ctx context.Context, record domain.SessionRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to encode session", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = raw
	return nil
}

func (s *Store) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

// Saves returns how many snapshot writes have been committed.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

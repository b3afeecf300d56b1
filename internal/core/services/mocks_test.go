package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/bodega_ledger/internal/core/domain"
)

// --- Mock Store (both slots) ---
type MockStore struct {
	mock.Mock
}

func (m *MockStore) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	args := m.Called(ctx)
	var snapshot domain.Snapshot
	if args.Get(0) != nil {
		snapshot = args.Get(0).(domain.Snapshot)
	}
	return snapshot, args.Error(1)
}

func (m *MockStore) SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockStore) LoadSession(ctx context.Context) (*domain.SessionRecord, error) {
	args := m.Called(ctx)
	var record *domain.SessionRecord
	if args.Get(0) != nil {
		record = args.Get(0).(*domain.SessionRecord)
	}
	return record, args.Error(1)
}

func (m *MockStore) SaveSession(ctx context.Context, record domain.SessionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockStore) ClearSession(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

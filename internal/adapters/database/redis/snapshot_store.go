package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/SscSPs/bodega_ledger/internal/apperrors"
	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bodega_ledger/internal/core/ports/repositories"
)

const defaultDialTimeout = 5 * time.Second

// Store keeps the data and session slots as two JSON string keys.
type Store struct {
	client goredis.UniversalClient
	prefix string
}

// NewStore creates a store using keys "<prefix>:data" and "<prefix>:session".
func NewStore(client goredis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "bodega"
	}
	return &Store{client: client, prefix: prefix}
}

var _ portsrepo.Store = (*Store)(nil)

// NewClient connects to a single Redis node and pings it.
func NewClient(ctx context.Context, addr, password string, db int) (goredis.UniversalClient, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultDialTimeout,
		WriteTimeout: defaultDialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

func (s *Store) keyData() string    { return s.prefix + ":data" }
func (s *Store) keySession() string { return s.prefix + ":session" }

func (s *Store) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	raw, err := s.client.Get(ctx, s.keyData()).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.Snapshot{}, nil
	}
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to read snapshot from redis", err)
	}

	snapshot := domain.Snapshot{}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to decode snapshot", err)
	}
	return snapshot, nil
}

func (s *Store) SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to encode snapshot", err)
	}
	if err := s.client.Set(ctx, s.keyData(), raw, 0).Err(); err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to write snapshot to redis", err)
	}
	return nil
}

func (s *Store) LoadSession(ctx context.Context) (*domain.SessionRecord, error) {
	raw, err := s.client.Get(ctx, s.keySession()).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to read session from redis", err)
	}

	var record domain.SessionRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to decode session", err)
	}
	return &record, nil
}

func (s *Store) SaveSession(ctx context.Context, record domain.SessionRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to encode session", err)
	}
	if err := s.client.Set(ctx, s.keySession(), raw, 0).Err(); err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to write session to redis", err)
	}
	return nil
}

func (s *Store) ClearSession(ctx context.Context) error {
	if err := s.client.Del(ctx, s.keySession()).Err(); err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to clear session in redis", err)
	}
	return nil
}

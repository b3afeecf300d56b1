// Package filestore persists the data and session slots as two JSON files.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/SscSPs/bodega_ledger/internal/apperrors"
	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bodega_ledger/internal/core/ports/repositories"
)

const (
	filePerm = 0644
	dirPerm  = 0755
)

// Store writes each slot to its own file. Writes go to a temporary file in the same
// directory which is then renamed over the target, so a crash leaves either the old or
// the new content.
type Store struct {
	dataPath    string
	sessionPath string

	mu sync.Mutex
}

// New creates a file store. The parent directories are created if missing.
func New(dataPath, sessionPath string) (*Store, error) {
	if dataPath == "" || sessionPath == "" {
		return nil, fmt.Errorf("data and session paths are required")
	}
	if filepath.Clean(dataPath) == filepath.Clean(sessionPath) {
		return nil, fmt.Errorf("data and session paths must differ")
	}
	for _, p := range []string{dataPath, sessionPath} {
		if err := os.MkdirAll(filepath.Dir(p), dirPerm); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", p, err)
		}
	}
	return &Store{dataPath: dataPath, sessionPath: sessionPath}, nil
}

var _ portsrepo.Store = (*Store)(nil)

func (s *Store) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := domain.Snapshot{}
	found, err := readJSON(s.dataPath, &snapshot)
	if err != nil {
		return nil, err
	}
	if !found {
		return domain.Snapshot{}, nil
	}
	return snapshot, nil
}

func (s *Store) SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.dataPath, snapshot)
}

func (s *Store) LoadSession(ctx context.Context) (*domain.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var record domain.SessionRecord
	found, err := readJSON(s.sessionPath, &record)
	if err != nil || !found {
		return nil, err
	}
	return &record, nil
}

func (s *Store) SaveSession(ctx context.Context, record domain.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.sessionPath, record)
}

func (s *Store) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.sessionPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to remove session file", err)
	}
	return nil
}

// readJSON decodes path into v. A missing or empty file reports found == false.
func readJSON(path string, v any) (bool, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to read %s", path), err)
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, apperrors.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to decode %s", path), err)
	}
	return true, nil
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to encode file payload", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to create temp file", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		cleanup()
		return apperrors.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to write %s", path), err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return apperrors.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to sync %s", path), err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return apperrors.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to close %s", path), err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		cleanup()
		return apperrors.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to chmod %s", path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return apperrors.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to replace %s", path), err)
	}
	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"RegimeWatch/internal/domain/models"
	drepo "RegimeWatch/internal/domain/repository"
)

// FileSnapshotStore persists the latest snapshot as a single JSON document.
// Writes go through a temp file and an os.Rename so any concurrent reader,
// including one in another process, observes either the previous or the new
// complete document. Single writer, many readers, last write wins.
type FileSnapshotStore struct {
	path   string
	symbol string
	mu     sync.Mutex
}

// NewFileSnapshotStore creates the store. symbol seeds the default snapshot
// returned before the first write.
func NewFileSnapshotStore(path, symbol string) *FileSnapshotStore {
	return &FileSnapshotStore{path: path, symbol: symbol}
}

func (s *FileSnapshotStore) Write(ctx context.Context, snap *models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: marshal snapshot: %v", models.ErrStoreFailure, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", models.ErrStoreFailure, dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", models.ErrStoreFailure, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write temp: %v", models.ErrStoreFailure, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close temp: %v", models.ErrStoreFailure, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replace snapshot: %v", models.ErrStoreFailure, err)
	}
	return nil
}

func (s *FileSnapshotStore) Read(ctx context.Context) (*models.Snapshot, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.DefaultSnapshot(s.symbol), nil
		}
		return nil, fmt.Errorf("%w: read snapshot: %v", models.ErrStoreFailure, err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("%w: parse snapshot: %v", models.ErrStoreFailure, err)
	}
	if snap.Alerts == nil {
		snap.Alerts = []models.AlertEvent{}
	}
	return &snap, nil
}

var _ drepo.SnapshotStore = (*FileSnapshotStore)(nil)

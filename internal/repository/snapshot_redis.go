package repository

import (
	"context"
	"errors"
	"fmt"

	"RegimeWatch/internal/domain/models"
	drepo "RegimeWatch/internal/domain/repository"
	"RegimeWatch/pkg/cache"
)

const snapshotKey = "regime:snapshot"

// RedisSnapshotStore keeps the latest snapshot as one JSON document under a
// single key. SET replaces the document atomically, which gives concurrent
// readers the same previous-or-new guarantee as the file store.
type RedisSnapshotStore struct {
	cache  cache.Service
	symbol string
}

func NewRedisSnapshotStore(c cache.Service, symbol string) *RedisSnapshotStore {
	return &RedisSnapshotStore{cache: c, symbol: symbol}
}

func (s *RedisSnapshotStore) Write(ctx context.Context, snap *models.Snapshot) error {
	if err := s.cache.Set(ctx, snapshotKey, snap, 0); err != nil {
		return fmt.Errorf("%w: redis set snapshot: %v", models.ErrStoreFailure, err)
	}
	return nil
}

func (s *RedisSnapshotStore) Read(ctx context.Context) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := s.cache.Get(ctx, snapshotKey, &snap); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return models.DefaultSnapshot(s.symbol), nil
		}
		return nil, fmt.Errorf("%w: redis get snapshot: %v", models.ErrStoreFailure, err)
	}
	if snap.Alerts == nil {
		snap.Alerts = []models.AlertEvent{}
	}
	return &snap, nil
}

var _ drepo.SnapshotStore = (*RedisSnapshotStore)(nil)

package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"RegimeWatch/internal/domain/models"
	drepo "RegimeWatch/internal/domain/repository"
	"RegimeWatch/pkg/cache"
)

const subscribersKey = "regime:subscribers"

// RedisSubscriberStore keeps the whole subscriber map as one JSON document
// under a single key, mirroring the file store's wholesale-rewrite layout.
// The mutex only serializes read-modify-write sequences within this
// process; writers in other processes can still race (same documented
// limitation as the file store).
type RedisSubscriberStore struct {
	cache cache.Service
	mu    sync.Mutex
}

func NewRedisSubscriberStore(c cache.Service) *RedisSubscriberStore {
	return &RedisSubscriberStore{cache: c}
}

func (s *RedisSubscriberStore) Load(ctx context.Context) (map[string]models.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *RedisSubscriberStore) load(ctx context.Context) (map[string]models.Subscriber, error) {
	subs := map[string]models.Subscriber{}
	if err := s.cache.Get(ctx, subscribersKey, &subs); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return map[string]models.Subscriber{}, nil
		}
		return nil, fmt.Errorf("%w: redis get subscribers: %v", models.ErrStoreFailure, err)
	}
	for id, sub := range subs {
		sub.ID = id
		sub.Normalize()
		subs[id] = sub
	}
	return subs, nil
}

func (s *RedisSubscriberStore) Save(ctx context.Context, subs map[string]models.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, subs)
}

func (s *RedisSubscriberStore) save(ctx context.Context, subs map[string]models.Subscriber) error {
	if err := s.cache.Set(ctx, subscribersKey, subs, 0); err != nil {
		return fmt.Errorf("%w: redis set subscribers: %v", models.ErrStoreFailure, err)
	}
	return nil
}

func (s *RedisSubscriberStore) GetOrCreate(ctx context.Context, id string) (models.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.load(ctx)
	if err != nil {
		return models.Subscriber{}, err
	}
	if sub, ok := subs[id]; ok {
		return sub, nil
	}
	sub := models.NewSubscriber(id)
	subs[id] = sub
	if err := s.save(ctx, subs); err != nil {
		return models.Subscriber{}, err
	}
	return sub, nil
}

func (s *RedisSubscriberStore) ToggleAlert(ctx context.Context, id string, kind models.AlertKind) (models.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.load(ctx)
	if err != nil {
		return models.Subscriber{}, err
	}
	sub, ok := subs[id]
	if !ok {
		sub = models.NewSubscriber(id)
	}
	sub.AlertPrefs[kind] = !sub.AlertPrefs[kind]
	subs[id] = sub
	if err := s.save(ctx, subs); err != nil {
		return models.Subscriber{}, err
	}
	return sub, nil
}

func (s *RedisSubscriberStore) ToggleRegime(ctx context.Context, id string, regime models.Regime) (models.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.load(ctx)
	if err != nil {
		return models.Subscriber{}, err
	}
	sub, ok := subs[id]
	if !ok {
		sub = models.NewSubscriber(id)
	}
	sub.RegimeNotifyPrefs[regime] = !sub.RegimeNotifyPrefs[regime]
	subs[id] = sub
	if err := s.save(ctx, subs); err != nil {
		return models.Subscriber{}, err
	}
	return sub, nil
}

var _ drepo.SubscriberStore = (*RedisSubscriberStore)(nil)

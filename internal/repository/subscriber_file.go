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

// FileSubscriberStore persists all subscriber preferences as one JSON
// document keyed by subscriber id, rewritten wholesale on every save via
// temp file + rename. Load normalizes every record so documents written
// before a new AlertKind or Regime existed stay valid. The mutex serializes
// in-process read-modify-write sequences only; there is no cross-process
// locking, so concurrent toggles from the bot and the API can lose one
// update.
type FileSubscriberStore struct {
	path string
	mu   sync.Mutex
}

func NewFileSubscriberStore(path string) *FileSubscriberStore {
	return &FileSubscriberStore{path: path}
}

func (s *FileSubscriberStore) Load(ctx context.Context) (map[string]models.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileSubscriberStore) load() (map[string]models.Subscriber, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]models.Subscriber{}, nil
		}
		return nil, fmt.Errorf("%w: read subscribers: %v", models.ErrStoreFailure, err)
	}

	subs := map[string]models.Subscriber{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &subs); err != nil {
			return nil, fmt.Errorf("%w: parse subscribers: %v", models.ErrStoreFailure, err)
		}
	}
	for id, sub := range subs {
		sub.ID = id
		sub.Normalize()
		subs[id] = sub
	}
	return subs, nil
}

func (s *FileSubscriberStore) Save(ctx context.Context, subs map[string]models.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(subs)
}

func (s *FileSubscriberStore) save(subs map[string]models.Subscriber) error {
	b, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal subscribers: %v", models.ErrStoreFailure, err)
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
		return fmt.Errorf("%w: replace subscribers: %v", models.ErrStoreFailure, err)
	}
	return nil
}

func (s *FileSubscriberStore) GetOrCreate(ctx context.Context, id string) (models.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.load()
	if err != nil {
		return models.Subscriber{}, err
	}
	if sub, ok := subs[id]; ok {
		return sub, nil
	}
	sub := models.NewSubscriber(id)
	subs[id] = sub
	if err := s.save(subs); err != nil {
		return models.Subscriber{}, err
	}
	return sub, nil
}

func (s *FileSubscriberStore) ToggleAlert(ctx context.Context, id string, kind models.AlertKind) (models.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.load()
	if err != nil {
		return models.Subscriber{}, err
	}
	sub, ok := subs[id]
	if !ok {
		sub = models.NewSubscriber(id)
	}
	sub.AlertPrefs[kind] = !sub.AlertPrefs[kind]
	subs[id] = sub
	if err := s.save(subs); err != nil {
		return models.Subscriber{}, err
	}
	return sub, nil
}

func (s *FileSubscriberStore) ToggleRegime(ctx context.Context, id string, regime models.Regime) (models.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.load()
	if err != nil {
		return models.Subscriber{}, err
	}
	sub, ok := subs[id]
	if !ok {
		sub = models.NewSubscriber(id)
	}
	sub.RegimeNotifyPrefs[regime] = !sub.RegimeNotifyPrefs[regime]
	subs[id] = sub
	if err := s.save(subs); err != nil {
		return models.Subscriber{}, err
	}
	return sub, nil
}

var _ drepo.SubscriberStore = (*FileSubscriberStore)(nil)

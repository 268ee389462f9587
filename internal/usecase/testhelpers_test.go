package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"RegimeWatch/internal/domain/models"
	drepo "RegimeWatch/internal/domain/repository"
	applogger "RegimeWatch/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	return l
}

// --- subscriber store fake ---

type fakeSubStore struct {
	subs    map[string]models.Subscriber
	loadErr error
}

func (f *fakeSubStore) Load(context.Context) (map[string]models.Subscriber, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make(map[string]models.Subscriber, len(f.subs))
	for id, s := range f.subs {
		out[id] = s
	}
	return out, nil
}

func (f *fakeSubStore) Save(_ context.Context, subs map[string]models.Subscriber) error {
	f.subs = subs
	return nil
}

func (f *fakeSubStore) GetOrCreate(_ context.Context, id string) (models.Subscriber, error) {
	if s, ok := f.subs[id]; ok {
		return s, nil
	}
	s := models.NewSubscriber(id)
	if f.subs == nil {
		f.subs = map[string]models.Subscriber{}
	}
	f.subs[id] = s
	return s, nil
}

func (f *fakeSubStore) ToggleAlert(ctx context.Context, id string, kind models.AlertKind) (models.Subscriber, error) {
	s, err := f.GetOrCreate(ctx, id)
	if err != nil {
		return models.Subscriber{}, err
	}
	s.AlertPrefs[kind] = !s.AlertPrefs[kind]
	f.subs[id] = s
	return s, nil
}

func (f *fakeSubStore) ToggleRegime(ctx context.Context, id string, regime models.Regime) (models.Subscriber, error) {
	s, err := f.GetOrCreate(ctx, id)
	if err != nil {
		return models.Subscriber{}, err
	}
	s.RegimeNotifyPrefs[regime] = !s.RegimeNotifyPrefs[regime]
	f.subs[id] = s
	return s, nil
}

// --- transport fake ---

type sentMessage struct {
	ID   string
	Text string
}

type fakeTransport struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[string]error
}

func (f *fakeTransport) Send(_ context.Context, id, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[id]; ok {
		return err
	}
	f.sent = append(f.sent, sentMessage{ID: id, Text: text})
	return nil
}

// --- alert publisher fake ---

type fakePublisher struct {
	published []models.AlertEvent
	err       error
}

func (f *fakePublisher) PublishAlert(_ context.Context, _ string, a models.AlertEvent) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, a)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

// --- metrics fake ---

type fakeMetrics struct {
	mu         sync.Mutex
	cycles     map[string]int
	alerts     map[string]int
	deliveries map[string]int
	errors     map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		cycles:     map[string]int{},
		alerts:     map[string]int{},
		deliveries: map[string]int{},
		errors:     map[string]int{},
	}
}

func (m *fakeMetrics) RecordCycle(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles[status]++
}

func (m *fakeMetrics) RecordAlert(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts[kind]++
}

func (m *fakeMetrics) RecordDelivery(transport, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries[transport+"/"+status]++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) RecordLatency(string, float64)            {}
func (m *fakeMetrics) RecordConfidence(string, string, float64) {}

var _ drepo.Metrics = (*fakeMetrics)(nil)

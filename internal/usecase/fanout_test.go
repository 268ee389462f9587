package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RegimeWatch/internal/domain/models"
)

func subWith(id string, alerts []models.AlertKind, regimes []models.Regime) models.Subscriber {
	s := models.NewSubscriber(id)
	for _, k := range alerts {
		s.AlertPrefs[k] = true
	}
	for _, r := range regimes {
		s.RegimeNotifyPrefs[r] = true
	}
	return s
}

func TestDispatchRespectsPreferences(t *testing.T) {
	store := &fakeSubStore{subs: map[string]models.Subscriber{
		"1": subWith("1", []models.AlertKind{models.AlertStrongTrendConfirmed}, nil),
		"2": subWith("2", nil, []models.Regime{models.RegimeStrongTrend}),
		"3": subWith("3", nil, nil),
	}}
	tr := &fakeTransport{}
	f := NewFanout(store, tr, nil, newFakeMetrics(), testLogger(t))

	alerts := []models.AlertEvent{{Kind: models.AlertStrongTrendConfirmed, Confidence: 0.8}}
	f.Dispatch(context.Background(), "BTCUSDT", alerts, result(models.RegimeStrongTrend, 0.8))

	require.Len(t, tr.sent, 2)
	// deterministic order by subscriber id
	assert.Equal(t, "1", tr.sent[0].ID)
	assert.Contains(t, tr.sent[0].Text, "Strong Trend Confirmed")
	assert.Equal(t, "2", tr.sent[1].ID)
	assert.Contains(t, tr.sent[1].Text, "Market entered Strong Trend")
}

func TestDispatchFailedDeliveryDoesNotStopOthers(t *testing.T) {
	store := &fakeSubStore{subs: map[string]models.Subscriber{
		"1": subWith("1", []models.AlertKind{models.AlertRegimeChange}, nil),
		"2": subWith("2", []models.AlertKind{models.AlertRegimeChange}, nil),
	}}
	tr := &fakeTransport{failFor: map[string]error{"1": models.ErrDeliveryFailure}}
	m := newFakeMetrics()
	f := NewFanout(store, tr, nil, m, testLogger(t))

	alerts := []models.AlertEvent{{
		Kind: models.AlertRegimeChange,
		From: models.RegimeRange, To: models.RegimeSqueeze, Confidence: 0.6,
	}}
	f.Dispatch(context.Background(), "BTCUSDT", alerts, result(models.RegimeSqueeze, 0.6))

	require.Len(t, tr.sent, 1)
	assert.Equal(t, "2", tr.sent[0].ID)
	assert.Equal(t, 1, m.deliveries["telegram/failed"])
	assert.Equal(t, 1, m.deliveries["telegram/sent"])
}

func TestDispatchLoadFailureSkipsDeliveries(t *testing.T) {
	store := &fakeSubStore{loadErr: errors.New("disk gone")}
	tr := &fakeTransport{}
	pub := &fakePublisher{}
	m := newFakeMetrics()
	f := NewFanout(store, tr, pub, m, testLogger(t))

	alerts := []models.AlertEvent{{Kind: models.AlertChoppyMarketWarning, Confidence: 0.7}}
	f.Dispatch(context.Background(), "BTCUSDT", alerts, result(models.RegimeChoppyHighVol, 0.7))

	// alerts are still counted and published before subscribers load
	assert.Empty(t, tr.sent)
	assert.Len(t, pub.published, 1)
	assert.Equal(t, 1, m.alerts[string(models.AlertChoppyMarketWarning)])
	assert.Equal(t, 1, m.errors["fanout_load"])
}

func TestDispatchNilTransportAndPublisher(t *testing.T) {
	store := &fakeSubStore{subs: map[string]models.Subscriber{
		"1": subWith("1", []models.AlertKind{models.AlertStrongTrendConfirmed}, nil),
	}}
	f := NewFanout(store, nil, nil, newFakeMetrics(), testLogger(t))

	alerts := []models.AlertEvent{{Kind: models.AlertStrongTrendConfirmed, Confidence: 0.9}}
	// must not panic
	f.Dispatch(context.Background(), "BTCUSDT", alerts, result(models.RegimeStrongTrend, 0.9))
}

func TestDispatchPublisherFailureIsBestEffort(t *testing.T) {
	store := &fakeSubStore{subs: map[string]models.Subscriber{
		"1": subWith("1", []models.AlertKind{models.AlertStrongTrendConfirmed}, nil),
	}}
	tr := &fakeTransport{}
	pub := &fakePublisher{err: errors.New("broker down")}
	m := newFakeMetrics()
	f := NewFanout(store, tr, pub, m, testLogger(t))

	alerts := []models.AlertEvent{{Kind: models.AlertStrongTrendConfirmed, Confidence: 0.9}}
	f.Dispatch(context.Background(), "BTCUSDT", alerts, result(models.RegimeStrongTrend, 0.9))

	// deliveries still happen
	assert.Len(t, tr.sent, 1)
	assert.Equal(t, 1, m.errors["alert_publish"])
}

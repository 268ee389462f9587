package repository

import (
	"context"

	"RegimeWatch/internal/domain/models"
)

// CandleSource serves ordered, ascending-by-time OHLCV bars for a symbol.
// Implementations: Binance REST, Binance kline stream, ClickHouse.
type CandleSource interface {
	GetCandles(ctx context.Context, symbol string, interval Interval, limit int) ([]models.Candle, error)
}

// SnapshotStore holds the latest classification snapshot. Write replaces the
// whole document atomically; concurrent readers observe either the previous
// or the new complete snapshot, never a partial one. Read before any write
// returns the documented default, not an error.
type SnapshotStore interface {
	Write(ctx context.Context, snap *models.Snapshot) error
	Read(ctx context.Context) (*models.Snapshot, error)
}

// SubscriberStore persists per-subscriber notification preferences as one
// document keyed by subscriber id, rewritten wholesale on every mutation.
// Toggles are read-modify-write over the whole store; concurrent writers
// from the configuration surface and the worker can race and silently lose
// one update. Documented limitation, not corrected here.
type SubscriberStore interface {
	Load(ctx context.Context) (map[string]models.Subscriber, error)
	Save(ctx context.Context, subs map[string]models.Subscriber) error
	GetOrCreate(ctx context.Context, id string) (models.Subscriber, error)
	ToggleAlert(ctx context.Context, id string, kind models.AlertKind) (models.Subscriber, error)
	ToggleRegime(ctx context.Context, id string, regime models.Regime) (models.Subscriber, error)
}

// Metrics records pipeline observability signals.
type Metrics interface {
	RecordCycle(status string)
	RecordAlert(kind string)
	RecordDelivery(transport, status string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordConfidence(symbol, regime string, confidence float64)
}

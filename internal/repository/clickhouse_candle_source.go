package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"RegimeWatch/internal/domain/models"
	drepo "RegimeWatch/internal/domain/repository"
	pkgch "RegimeWatch/pkg/clickhouse"
	applogger "RegimeWatch/pkg/logger"
)

// CHCandleSource implements CandleSource backed by ClickHouse candle
// tables, for deployments where an upstream ingest already materializes
// OHLCV buckets. Source failures surface as ErrDataUnavailable: to the
// pipeline this is a market data provider like any other.
type CHCandleSource struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewCHCandleSource(ch *pkgch.Client, database string) *CHCandleSource {
	return &CHCandleSource{db: ch.DB(), database: database}
}

// SetLogger injects a structured logger.
func (s *CHCandleSource) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHCandleSource) GetCandles(ctx context.Context, symbol string, interval drepo.Interval, limit int) ([]models.Candle, error) {
	start := time.Now()
	table, err := s.tableFor(interval)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}

	const qtpl = `
        SELECT bucket, symbol, open, high, low, close, vol
        FROM %s
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, table)
	rows, err := s.db.QueryContext(ctx, q, symbol, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse candles query error",
				applogger.String("table", table),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("%w: query candles: %v", models.ErrDataUnavailable, err)
	}
	defer rows.Close()

	tmp := make([]models.Candle, 0, limit)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("%w: scan candle: %v", models.ErrDataUnavailable, err)
		}
		tmp = append(tmp, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", models.ErrDataUnavailable, err)
	}

	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}

	if s.l != nil {
		s.l.Debug("clickhouse candles ok",
			applogger.String("table", table),
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}

func (s *CHCandleSource) tableFor(interval drepo.Interval) (string, error) {
	switch interval {
	case drepo.Interval1m:
		return s.database + ".candles_1m", nil
	case drepo.Interval5m:
		return s.database + ".candles_5m", nil
	case drepo.Interval15m:
		return s.database + ".candles_15m", nil
	case drepo.Interval1h:
		return s.database + ".candles_1h", nil
	default:
		return "", fmt.Errorf("unsupported interval: %s", interval)
	}
}

var _ drepo.CandleSource = (*CHCandleSource)(nil)

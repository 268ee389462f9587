package binance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"RegimeWatch/internal/domain/models"
	drepo "RegimeWatch/internal/domain/repository"
	pkghttp "RegimeWatch/pkg/http"
)

// RESTSource fetches klines from the Binance REST API.
type RESTSource struct {
	baseURL string
	client  *pkghttp.Client
}

// NewRESTSource creates a kline fetcher against the given Binance base URL
// (e.g. https://api.binance.com).
func NewRESTSource(baseURL string, timeout time.Duration) *RESTSource {
	return &RESTSource{
		baseURL: baseURL,
		client:  pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
	}
}

// GetCandles fetches the latest `limit` closed klines for symbol/interval,
// ascending by open time. Any transport or decode failure is reported as
// ErrDataUnavailable.
func (s *RESTSource) GetCandles(ctx context.Context, symbol string, interval drepo.Interval, limit int) ([]models.Candle, error) {
	var raw [][]interface{}
	opts := &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    s.baseURL + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":   {symbol},
			"interval": {string(interval)},
			"limit":    {strconv.Itoa(limit)},
		},
	}
	if err := s.client.SendAndParse(ctx, opts, &raw); err != nil {
		return nil, fmt.Errorf("%w: klines %s %s: %v", models.ErrDataUnavailable, symbol, interval, err)
	}

	candles := make([]models.Candle, 0, len(raw))
	for i, row := range raw {
		c, err := parseKlineRow(symbol, row)
		if err != nil {
			return nil, fmt.Errorf("%w: kline row %d: %v", models.ErrDataUnavailable, i, err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// parseKlineRow decodes one Binance kline array:
// [openTime, open, high, low, close, volume, closeTime, ...].
func parseKlineRow(symbol string, row []interface{}) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, fmt.Errorf("short row: %d fields", len(row))
	}
	openMS, ok := row[0].(float64)
	if !ok {
		return models.Candle{}, fmt.Errorf("open time is %T", row[0])
	}

	vals := make([]float64, 5)
	for i := 0; i < 5; i++ {
		s, ok := row[i+1].(string)
		if !ok {
			return models.Candle{}, fmt.Errorf("field %d is %T", i+1, row[i+1])
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		vals[i] = v
	}

	return models.Candle{
		Bucket: time.UnixMilli(int64(openMS)).UTC(),
		Symbol: symbol,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

var _ drepo.CandleSource = (*RESTSource)(nil)

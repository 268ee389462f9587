package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"RegimeWatch/internal/domain/models"
	drepo "RegimeWatch/internal/domain/repository"
	applogger "RegimeWatch/pkg/logger"
)

// StreamSource maintains rolling windows of closed klines fed by the
// Binance combined websocket stream. GetCandles serves from memory, so
// a polling cycle never blocks on the exchange once the windows are warm.
type StreamSource struct {
	wsURL          string
	symbol         string
	intervals      []drepo.Interval
	capacity       int
	reconnectDelay time.Duration
	pingInterval   time.Duration
	l              *applogger.Logger

	mu      sync.RWMutex
	windows map[drepo.Interval][]models.Candle

	conn      *websocket.Conn
	connected bool
}

// NewStreamSource creates a stream-backed candle source. capacity bounds
// each rolling window; it should comfortably exceed the candle limit the
// monitor requests.
func NewStreamSource(wsURL, symbol string, intervals []drepo.Interval, capacity int, reconnectDelay, pingInterval time.Duration, l *applogger.Logger) *StreamSource {
	windows := make(map[drepo.Interval][]models.Candle, len(intervals))
	for _, iv := range intervals {
		windows[iv] = nil
	}
	return &StreamSource{
		wsURL:          wsURL,
		symbol:         symbol,
		intervals:      intervals,
		capacity:       capacity,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		l:              l,
		windows:        windows,
	}
}

// GetCandles returns up to `limit` most recent closed candles for interval,
// ascending by open time. An interval the stream was not configured for is
// a data availability error.
func (s *StreamSource) GetCandles(_ context.Context, symbol string, interval drepo.Interval, limit int) ([]models.Candle, error) {
	if symbol != s.symbol {
		return nil, fmt.Errorf("%w: stream tracks %s, not %s", models.ErrDataUnavailable, s.symbol, symbol)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.windows[interval]
	if !ok {
		return nil, fmt.Errorf("%w: interval %s not streamed", models.ErrDataUnavailable, interval)
	}
	if len(w) == 0 {
		return nil, fmt.Errorf("%w: %s window not warm yet", models.ErrDataUnavailable, interval)
	}
	start := 0
	if len(w) > limit {
		start = len(w) - limit
	}
	out := make([]models.Candle, len(w)-start)
	copy(out, w[start:])
	return out, nil
}

// Start runs the connect/read loop until ctx is cancelled, reconnecting
// with a fixed delay after any read failure.
func (s *StreamSource) Start(ctx context.Context) {
	for {
		if err := s.connect(ctx); err != nil {
			s.l.Error("binance stream connect failed", applogger.Error(err))
		} else {
			s.readLoop(ctx)
		}
		s.close()

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *StreamSource) connect(ctx context.Context) error {
	streams := make([]string, 0, len(s.intervals))
	for _, iv := range s.intervals {
		streams = append(streams, fmt.Sprintf("%s@kline_%s", strings.ToLower(s.symbol), iv))
	}
	u := fmt.Sprintf("%s/stream?streams=%s", s.wsURL, strings.Join(streams, "/"))

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("binance dial: %w", err)
	}
	s.conn = conn
	s.connected = true
	s.l.Info("binance stream connected", applogger.String("url", u))
	return nil
}

type wsEnvelope struct {
	Stream string      `json:"stream"`
	Data   wsKlineData `json:"data"`
}

type wsKlineData struct {
	Symbol string  `json:"s"`
	Kline  wsKline `json:"k"`
}

type wsKline struct {
	OpenTime int64  `json:"t"` // ms
	Interval string `json:"i"`
	Open     string `json:"o"`
	High     string `json:"h"`
	Low      string `json:"l"`
	Close    string `json:"c"`
	Volume   string `json:"v"`
	Closed   bool   `json:"x"`
}

func (s *StreamSource) readLoop(ctx context.Context) {
	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go s.pingLoop(pingCtx)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, b, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.l.Error("binance stream read failed", applogger.Error(err))
			}
			return
		}

		var env wsEnvelope
		if err := json.Unmarshal(b, &env); err != nil {
			// non-kline frames (subscription acks etc.)
			continue
		}
		k := env.Data.Kline
		if !k.Closed {
			continue
		}
		c, err := parseStreamKline(env.Data.Symbol, k)
		if err != nil {
			s.l.Warn("binance stream bad kline", applogger.Error(err))
			continue
		}
		s.append(drepo.Interval(k.Interval), c)
	}
}

func (s *StreamSource) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.conn != nil {
				_ = s.conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}
}

// append inserts a closed candle into its interval window, replacing a
// bar with the same open time and trimming to capacity.
func (s *StreamSource) append(interval drepo.Interval, c models.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[interval]
	if !ok {
		return
	}
	if n := len(w); n > 0 && w[n-1].Bucket.Equal(c.Bucket) {
		w[n-1] = c
	} else {
		w = append(w, c)
	}
	if len(w) > s.capacity {
		w = w[len(w)-s.capacity:]
	}
	s.windows[interval] = w
}

func parseStreamKline(symbol string, k wsKline) (models.Candle, error) {
	vals := make([]float64, 5)
	for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("kline field %d: %w", i, err)
		}
		vals[i] = v
	}
	return models.Candle{
		Bucket: time.UnixMilli(k.OpenTime).UTC(),
		Symbol: symbol,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

func (s *StreamSource) close() {
	s.connected = false
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

// IsConnected reports whether the websocket is currently up.
func (s *StreamSource) IsConnected() bool { return s.connected }

var _ drepo.CandleSource = (*StreamSource)(nil)

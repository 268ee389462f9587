package usecase

import (
	"context"
	"fmt"
	"time"

	"RegimeWatch/internal/domain/models"
	drepo "RegimeWatch/internal/domain/repository"
	domsvc "RegimeWatch/internal/domain/service"
	"RegimeWatch/internal/services/features"
	applogger "RegimeWatch/pkg/logger"
)

// MonitorConfig holds the polling parameters for one monitored symbol.
type MonitorConfig struct {
	Symbol         string
	FineInterval   drepo.Interval
	CoarseInterval drepo.Interval
	CandleLimit    int
	PollInterval   time.Duration
}

// RegimeMonitor drives the classification cycle: fetch -> classify ->
// evaluate -> persist -> notify, once per poll interval. Cycles run
// strictly sequentially; the interval is measured from end-of-cycle to
// start-of-next, so the true period is interval + cycle duration.
type RegimeMonitor struct {
	cfg        MonitorConfig
	source     drepo.CandleSource
	classifier domsvc.Classifier
	snapshots  drepo.SnapshotStore
	fanout     *Fanout
	metrics    drepo.Metrics
	log        *applogger.Logger

	// previous cycle's decision, owned exclusively by the monitor and
	// threaded through each cycle. Nil pointers on cold start.
	state models.EngineState
}

// NewRegimeMonitor creates the polling worker.
func NewRegimeMonitor(
	cfg MonitorConfig,
	source drepo.CandleSource,
	classifier domsvc.Classifier,
	snapshots drepo.SnapshotStore,
	fanout *Fanout,
	metrics drepo.Metrics,
	log *applogger.Logger,
) *RegimeMonitor {
	return &RegimeMonitor{
		cfg:        cfg,
		source:     source,
		classifier: classifier,
		snapshots:  snapshots,
		fanout:     fanout,
		metrics:    metrics,
		log:        log,
	}
}

// Run loops until ctx is canceled. Every cycle is wrapped in a single error
// boundary: any failure is logged with its kind and cause and treated as a
// skipped cycle; the loop always proceeds to the next sleep.
func (m *RegimeMonitor) Run(ctx context.Context) error {
	m.log.Info("regime monitor started",
		applogger.String("symbol", m.cfg.Symbol),
		applogger.Duration("poll_interval", m.cfg.PollInterval),
	)

	for {
		m.RunOnce(ctx)

		select {
		case <-ctx.Done():
			m.log.Info("regime monitor stopped")
			return nil
		case <-time.After(m.cfg.PollInterval):
		}
	}
}

// RunOnce executes one cycle inside the error boundary. Exported so tests
// and operational tooling can drive cycles synchronously.
func (m *RegimeMonitor) RunOnce(ctx context.Context) {
	start := time.Now()
	if err := m.cycle(ctx); err != nil {
		kind := models.ErrorKind(err)
		m.metrics.RecordCycle("failed")
		m.metrics.RecordError(kind)
		m.log.Error("cycle failed",
			applogger.String("kind", kind),
			applogger.Error(err),
		)
	} else {
		m.metrics.RecordCycle("ok")
	}
	m.metrics.RecordLatency("cycle", time.Since(start).Seconds())
}

// cycle performs one fetch -> classify -> evaluate -> persist -> notify
// pass. On any error before the snapshot write commits, EngineState and the
// snapshot store are left exactly as they were, so the next successful
// cycle still compares against the last known regime.
func (m *RegimeMonitor) cycle(ctx context.Context) error {
	fine, err := m.source.GetCandles(ctx, m.cfg.Symbol, m.cfg.FineInterval, m.cfg.CandleLimit)
	if err != nil {
		return fmt.Errorf("fetch %s candles: %w", m.cfg.FineInterval, err)
	}
	coarse, err := m.source.GetCandles(ctx, m.cfg.Symbol, m.cfg.CoarseInterval, m.cfg.CandleLimit)
	if err != nil {
		return fmt.Errorf("fetch %s candles: %w", m.cfg.CoarseInterval, err)
	}

	merged := features.MergeTimeframes(fine, coarse)
	timeSteps, names := m.classifier.WindowSpec()
	window, err := features.BuildWindow(merged, names, timeSteps,
		string(m.cfg.FineInterval), string(m.cfg.CoarseInterval))
	if err != nil {
		return fmt.Errorf("build window: %w", err)
	}

	res, err := m.classifier.Classify(ctx, window)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}

	alerts, next := Evaluate(res, m.state)

	snap := models.NewSnapshot(m.cfg.Symbol, time.Now().Unix(), res, alerts)
	if err := m.snapshots.Write(ctx, snap); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	// the cycle is committed: only now does the previous-regime state move
	m.state = next
	m.metrics.RecordConfidence(m.cfg.Symbol, string(res.Regime), res.Confidence)

	m.log.Info("cycle complete",
		applogger.String("regime", string(res.Regime)),
		applogger.Any("confidence", res.Confidence),
		applogger.Int("alerts", len(alerts)),
	)

	// Fan-out runs strictly before the next sleep, with this cycle's
	// values. Failures inside are logged per subscriber and never bubble.
	m.fanout.Dispatch(ctx, m.cfg.Symbol, alerts, res)
	return nil
}

// State exposes the engine state for tests.
func (m *RegimeMonitor) State() models.EngineState { return m.state }

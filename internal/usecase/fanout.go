package usecase

import (
	"context"
	"fmt"
	"sort"

	"RegimeWatch/internal/domain/models"
	drepo "RegimeWatch/internal/domain/repository"
	domsvc "RegimeWatch/internal/domain/service"
	applogger "RegimeWatch/pkg/logger"
)

// Fanout matches a cycle's alert events and regime entry against every
// subscriber's preferences and delivers messages through the transport.
// Delivery is fire-and-forget: a failure for one subscriber is logged and
// never blocks the rest of the pass, the snapshot write, or the cycle.
type Fanout struct {
	subs      drepo.SubscriberStore
	transport domsvc.Transport
	publisher domsvc.AlertPublisher // optional, nil when unconfigured
	metrics   drepo.Metrics
	log       *applogger.Logger
}

// NewFanout creates the fan-out stage. transport and publisher may be nil
// when the corresponding integration is disabled.
func NewFanout(
	subs drepo.SubscriberStore,
	transport domsvc.Transport,
	publisher domsvc.AlertPublisher,
	metrics drepo.Metrics,
	log *applogger.Logger,
) *Fanout {
	return &Fanout{
		subs:      subs,
		transport: transport,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
	}
}

// Dispatch runs one fan-out pass with the current cycle's values. Best
// effort end to end: store or delivery failures are logged, never returned.
func (f *Fanout) Dispatch(ctx context.Context, symbol string, alerts []models.AlertEvent, res models.ClassificationResult) {
	f.publishAlerts(ctx, symbol, alerts)

	subs, err := f.subs.Load(ctx)
	if err != nil {
		f.metrics.RecordError("fanout_load")
		f.log.Error("fan-out skipped: subscriber store load failed", applogger.Error(err))
		return
	}
	if len(subs) == 0 {
		return
	}

	// deterministic delivery order
	ids := make([]string, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		sub := subs[id]
		for _, a := range alerts {
			if !sub.WantsAlert(a.Kind) {
				continue
			}
			f.send(ctx, id, formatAlert(symbol, a, res))
		}
		if sub.WantsRegime(res.Regime) {
			f.send(ctx, id, formatRegimeEntry(symbol, res))
		}
	}
}

func (f *Fanout) publishAlerts(ctx context.Context, symbol string, alerts []models.AlertEvent) {
	for _, a := range alerts {
		f.metrics.RecordAlert(string(a.Kind))
		if f.publisher == nil {
			continue
		}
		if err := f.publisher.PublishAlert(ctx, symbol, a); err != nil {
			f.metrics.RecordError("alert_publish")
			f.log.Warn("alert publish failed",
				applogger.String("kind", string(a.Kind)),
				applogger.Error(err),
			)
		}
	}
}

func (f *Fanout) send(ctx context.Context, id, text string) {
	if f.transport == nil {
		return
	}
	if err := f.transport.Send(ctx, id, text); err != nil {
		f.metrics.RecordDelivery("telegram", "failed")
		f.log.Warn("delivery failed",
			applogger.String("subscriber", id),
			applogger.Error(err),
		)
		return
	}
	f.metrics.RecordDelivery("telegram", "sent")
}

func formatAlert(symbol string, a models.AlertEvent, res models.ClassificationResult) string {
	switch a.Kind {
	case models.AlertRegimeChange:
		return fmt.Sprintf("%s\nSymbol: %s\n%s -> %s\nConfidence: %.2f",
			a.Kind.Display(), symbol, a.From.Display(), a.To.Display(), a.Confidence)
	default:
		return fmt.Sprintf("%s\nSymbol: %s\nRegime: %s\nConfidence: %.2f",
			a.Kind.Display(), symbol, res.Regime.Display(), a.Confidence)
	}
}

func formatRegimeEntry(symbol string, res models.ClassificationResult) string {
	return fmt.Sprintf("Market entered %s\nSymbol: %s\nConfidence: %.2f",
		res.Regime.Display(), symbol, res.Confidence)
}

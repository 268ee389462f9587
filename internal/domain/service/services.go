package service

import (
	"context"

	"RegimeWatch/internal/domain/models"
)

// Classifier turns one feature window into a classification decision.
// WindowSpec exposes the (time_steps, feature order) fixed at model load
// time so callers can build conforming windows.
type Classifier interface {
	Classify(ctx context.Context, window [][]float64) (models.ClassificationResult, error)
	WindowSpec() (timeSteps int, features []string)
}

// Transport delivers one message to one subscriber, best effort. A failure
// is reported to the caller but must never be retried by the transport.
type Transport interface {
	Send(ctx context.Context, subscriberID, text string) error
}

// AlertPublisher forwards emitted alert events to downstream systems.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, symbol string, a models.AlertEvent) error
	Close() error
}

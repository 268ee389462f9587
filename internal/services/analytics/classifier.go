package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"RegimeWatch/internal/domain/models"
	domsvc "RegimeWatch/internal/domain/service"
)

// probPrecision is the decimal precision distributions are rounded to.
const probPrecision = 6

// HTTPClassifier implements the Classifier contract against an external
// model service. The scaler transform and the output-index-to-regime
// mapping are fixed at construction from model metadata.
type HTTPClassifier struct {
	base     *HTTPServiceBase
	meta     *ModelMetadata
	regimes  []models.Regime
	attempts int
}

// NewHTTPClassifier builds a classifier from loaded metadata.
func NewHTTPClassifier(serviceURL string, timeout time.Duration, attempts int, meta *ModelMetadata) *HTTPClassifier {
	if attempts <= 0 {
		attempts = 1
	}
	return &HTTPClassifier{
		base:     NewHTTPServiceBase(serviceURL, timeout),
		meta:     meta,
		regimes:  meta.IndexToRegime(),
		attempts: attempts,
	}
}

// WindowSpec returns the (time_steps, feature order) the model expects.
func (c *HTTPClassifier) WindowSpec() (int, []string) {
	return c.meta.TimeSteps, c.meta.Features
}

type predictRequest struct {
	Window [][]float64 `json:"window"`
}

type predictResponse struct {
	Probs []float64 `json:"probs"`
}

// Classify scales the window per timestep, invokes the model service, and
// reduces the scores to a classification decision. The window must match
// the metadata dimensions exactly; anything else is ErrShapeMismatch.
func (c *HTTPClassifier) Classify(ctx context.Context, window [][]float64) (models.ClassificationResult, error) {
	var zero models.ClassificationResult

	if len(window) != c.meta.TimeSteps {
		return zero, fmt.Errorf("%w: expected %d time steps, got %d",
			models.ErrShapeMismatch, c.meta.TimeSteps, len(window))
	}
	nFeatures := len(c.meta.Features)
	for i, row := range window {
		if len(row) != nFeatures {
			return zero, fmt.Errorf("%w: expected %d features, row %d has %d",
				models.ErrShapeMismatch, nFeatures, i, len(row))
		}
	}

	scaled := c.scale(window)

	var pr predictResponse
	if err := c.base.PostJSONWithRetry(ctx, "/predict", predictRequest{Window: scaled}, &pr, c.attempts); err != nil {
		return zero, fmt.Errorf("%w: %v", models.ErrModelFailure, err)
	}
	if len(pr.Probs) != len(c.regimes) {
		return zero, fmt.Errorf("%w: model returned %d scores for %d regimes",
			models.ErrModelFailure, len(pr.Probs), len(c.regimes))
	}

	dist := make(map[models.Regime]float64, len(c.regimes))
	best := 0
	for i, p := range pr.Probs {
		dist[c.regimes[i]] = roundProb(p)
		if pr.Probs[i] > pr.Probs[best] {
			best = i
		}
	}
	regime := c.regimes[best]

	return models.ClassificationResult{
		Regime:       regime,
		Confidence:   dist[regime],
		Distribution: dist,
	}, nil
}

// scale applies the standard-scaler transform per timestep.
func (c *HTTPClassifier) scale(window [][]float64) [][]float64 {
	out := make([][]float64, len(window))
	for r, row := range window {
		scaled := make([]float64, len(row))
		for j, v := range row {
			s := c.meta.Scaler.Scale[j]
			if s == 0 {
				s = 1
			}
			scaled[j] = (v - c.meta.Scaler.Mean[j]) / s
		}
		out[r] = scaled
	}
	return out
}

func roundProb(p float64) float64 {
	shift := math.Pow10(probPrecision)
	return math.Round(p*shift) / shift
}

var _ domsvc.Classifier = (*HTTPClassifier)(nil)

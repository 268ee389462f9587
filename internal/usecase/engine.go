package usecase

import (
	"RegimeWatch/internal/domain/models"
)

// Alert thresholds. These are policy constants, not derived values.
const (
	// ConfirmThreshold gates STRONG_TREND_CONFIRMED on strong-trend entry.
	ConfirmThreshold = 0.65
	// WarnThreshold gates CHOPPY_MARKET_WARNING on choppy-high-vol entry.
	WarnThreshold = 0.60
	// ChangeThreshold gates REGIME_CHANGE on any regime transition.
	ChangeThreshold = 0.55
)

// Evaluate compares the new classification against the previous cycle and
// produces zero or more alert events. Pure: the caller owns the state and
// threads it through. Rules are independent; more than one may fire in the
// same cycle. State is updated unconditionally, so a sustained regime emits
// at most one confirmation/warning and at most one transition per actual
// change, and nothing ever re-fires.
func Evaluate(res models.ClassificationResult, state models.EngineState) ([]models.AlertEvent, models.EngineState) {
	var alerts []models.AlertEvent
	prev := state.PreviousRegime

	if res.Regime == models.RegimeStrongTrend &&
		res.Confidence >= ConfirmThreshold &&
		(prev == nil || *prev != models.RegimeStrongTrend) {
		alerts = append(alerts, models.AlertEvent{
			Kind:       models.AlertStrongTrendConfirmed,
			Confidence: res.Confidence,
		})
	}

	if res.Regime == models.RegimeChoppyHighVol &&
		res.Confidence >= WarnThreshold &&
		(prev == nil || *prev != models.RegimeChoppyHighVol) {
		alerts = append(alerts, models.AlertEvent{
			Kind:       models.AlertChoppyMarketWarning,
			Confidence: res.Confidence,
		})
	}

	// Cold start never produces a transition: there is nothing to compare
	// against on the first cycle.
	if prev != nil && res.Regime != *prev && res.Confidence >= ChangeThreshold {
		alerts = append(alerts, models.AlertEvent{
			Kind:       models.AlertRegimeChange,
			From:       *prev,
			To:         res.Regime,
			Confidence: res.Confidence,
		})
	}

	regime := res.Regime
	conf := res.Confidence
	return alerts, models.EngineState{
		PreviousRegime:     &regime,
		PreviousConfidence: &conf,
	}
}

package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RegimeWatch/internal/domain/models"
)

func result(regime models.Regime, conf float64) models.ClassificationResult {
	return models.ClassificationResult{
		Regime:       regime,
		Confidence:   conf,
		Distribution: map[models.Regime]float64{regime: conf},
	}
}

func stateOf(regime models.Regime, conf float64) models.EngineState {
	return models.EngineState{PreviousRegime: &regime, PreviousConfidence: &conf}
}

func TestEvaluateColdStartNoTransition(t *testing.T) {
	alerts, next := Evaluate(result(models.RegimeRange, 0.99), models.EngineState{})

	assert.Empty(t, alerts)
	require.NotNil(t, next.PreviousRegime)
	assert.Equal(t, models.RegimeRange, *next.PreviousRegime)
	require.NotNil(t, next.PreviousConfidence)
	assert.Equal(t, 0.99, *next.PreviousConfidence)
}

func TestEvaluateStrongTrendConfirmation(t *testing.T) {
	alerts, _ := Evaluate(result(models.RegimeStrongTrend, 0.70), stateOf(models.RegimeRange, 0.5))

	require.Len(t, alerts, 2)
	assert.Equal(t, models.AlertStrongTrendConfirmed, alerts[0].Kind)
	assert.Equal(t, 0.70, alerts[0].Confidence)
	assert.Equal(t, models.AlertRegimeChange, alerts[1].Kind)
	assert.Equal(t, models.RegimeRange, alerts[1].From)
	assert.Equal(t, models.RegimeStrongTrend, alerts[1].To)
}

func TestEvaluateConfirmationOnColdStart(t *testing.T) {
	alerts, _ := Evaluate(result(models.RegimeStrongTrend, 0.65), models.EngineState{})

	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertStrongTrendConfirmed, alerts[0].Kind)
}

func TestEvaluateThresholdsInclusive(t *testing.T) {
	// exactly at thresholds fires
	alerts, _ := Evaluate(result(models.RegimeStrongTrend, 0.65), stateOf(models.RegimeRange, 0.5))
	assert.Len(t, alerts, 2)

	alerts, _ = Evaluate(result(models.RegimeChoppyHighVol, 0.60), stateOf(models.RegimeRange, 0.5))
	assert.Len(t, alerts, 2)

	// just below the confirmation threshold: only the transition fires
	alerts, _ = Evaluate(result(models.RegimeStrongTrend, 0.649), stateOf(models.RegimeRange, 0.5))
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertRegimeChange, alerts[0].Kind)
}

func TestEvaluateSustainedRegimeNeverRefires(t *testing.T) {
	state := models.EngineState{}
	var alerts []models.AlertEvent

	alerts, state = Evaluate(result(models.RegimeStrongTrend, 0.80), state)
	assert.Len(t, alerts, 1)

	for i := 0; i < 3; i++ {
		alerts, state = Evaluate(result(models.RegimeStrongTrend, 0.90), state)
		assert.Empty(t, alerts)
	}
}

func TestEvaluateChoppyWarning(t *testing.T) {
	alerts, _ := Evaluate(result(models.RegimeChoppyHighVol, 0.62), stateOf(models.RegimeSqueeze, 0.7))

	require.Len(t, alerts, 2)
	assert.Equal(t, models.AlertChoppyMarketWarning, alerts[0].Kind)
	assert.Equal(t, models.AlertRegimeChange, alerts[1].Kind)
}

func TestEvaluateLowConfidenceChangeSuppressed(t *testing.T) {
	// transition below the change threshold emits nothing but still moves state
	alerts, next := Evaluate(result(models.RegimeWeakTrend, 0.40), stateOf(models.RegimeRange, 0.8))

	assert.Empty(t, alerts)
	require.NotNil(t, next.PreviousRegime)
	assert.Equal(t, models.RegimeWeakTrend, *next.PreviousRegime)

	// the suppressed change is gone for good: returning to RANGE is a fresh
	// transition from WEAK_TREND, not a replay
	alerts, _ = Evaluate(result(models.RegimeRange, 0.90), next)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.RegimeWeakTrend, alerts[0].From)
	assert.Equal(t, models.RegimeRange, alerts[0].To)
}

func TestEvaluateSameRegimeNoChange(t *testing.T) {
	alerts, _ := Evaluate(result(models.RegimeRange, 0.95), stateOf(models.RegimeRange, 0.5))
	assert.Empty(t, alerts)
}

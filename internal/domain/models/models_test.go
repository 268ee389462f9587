package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRegimeMembership(t *testing.T) {
	r, ok := ParseRegime("STRONG_TREND")
	assert.True(t, ok)
	assert.Equal(t, RegimeStrongTrend, r)

	_, ok = ParseRegime("strong_trend")
	assert.False(t, ok)
	_, ok = ParseRegime("")
	assert.False(t, ok)
}

func TestRegimeDisplay(t *testing.T) {
	assert.Equal(t, "Choppy High-Vol", RegimeChoppyHighVol.Display())
	assert.Equal(t, "Volatility Spike", RegimeVolatilitySpike.Display())
}

func TestClassificationResultValid(t *testing.T) {
	good := ClassificationResult{
		Regime:     RegimeRange,
		Confidence: 0.7,
		Distribution: map[Regime]float64{
			RegimeRange:   0.7,
			RegimeSqueeze: 0.3,
		},
	}
	assert.True(t, good.Valid(1e-9))

	// confidence must equal the winning probability
	bad := good
	bad.Confidence = 0.5
	assert.False(t, bad.Valid(1e-9))

	// no distribution entry may exceed the confidence
	bad = ClassificationResult{
		Regime:     RegimeRange,
		Confidence: 0.3,
		Distribution: map[Regime]float64{
			RegimeRange:   0.3,
			RegimeSqueeze: 0.7,
		},
	}
	assert.False(t, bad.Valid(1e-9))
}

func TestErrorKindClassification(t *testing.T) {
	assert.Equal(t, "data_unavailable", ErrorKind(fmt.Errorf("fetch: %w", ErrDataUnavailable)))
	assert.Equal(t, "shape_mismatch", ErrorKind(ErrShapeMismatch))
	assert.Equal(t, "model_failure", ErrorKind(fmt.Errorf("x: %w", ErrModelFailure)))
	assert.Equal(t, "store_failure", ErrorKind(ErrStoreFailure))
	assert.Equal(t, "delivery_failure", ErrorKind(ErrDeliveryFailure))
	assert.Equal(t, "unknown", ErrorKind(errors.New("something else")))
}

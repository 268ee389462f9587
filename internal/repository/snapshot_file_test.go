package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RegimeWatch/internal/domain/models"
)

func TestFileSnapshotReadBeforeWriteReturnsDefault(t *testing.T) {
	store := NewFileSnapshotStore(filepath.Join(t.TempDir(), "state.json"), "BTCUSDT")

	snap, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", snap.Symbol)
	assert.Nil(t, snap.Timestamp)
	assert.Nil(t, snap.Regime)
	assert.Nil(t, snap.Confidence)
	assert.NotNil(t, snap.Alerts)
	assert.Empty(t, snap.Alerts)
}

func TestFileSnapshotWriteReadRoundTrip(t *testing.T) {
	store := NewFileSnapshotStore(filepath.Join(t.TempDir(), "sub", "state.json"), "BTCUSDT")
	ctx := context.Background()

	res := models.ClassificationResult{
		Regime:     models.RegimeSqueeze,
		Confidence: 0.71,
		Distribution: map[models.Regime]float64{
			models.RegimeSqueeze: 0.71,
			models.RegimeRange:   0.29,
		},
	}
	alerts := []models.AlertEvent{{
		Kind: models.AlertRegimeChange,
		From: models.RegimeRange, To: models.RegimeSqueeze, Confidence: 0.71,
	}}
	require.NoError(t, store.Write(ctx, models.NewSnapshot("BTCUSDT", 1748800000, res, alerts)))

	got, err := store.Read(ctx)
	require.NoError(t, err)
	require.NotNil(t, got.Regime)
	assert.Equal(t, models.RegimeSqueeze, *got.Regime)
	require.NotNil(t, got.Timestamp)
	assert.Equal(t, int64(1748800000), *got.Timestamp)
	assert.Equal(t, 0.71, got.Distribution[models.RegimeSqueeze])
	require.Len(t, got.Alerts, 1)
	assert.Equal(t, models.RegimeRange, got.Alerts[0].From)
}

func TestFileSnapshotOverwriteWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileSnapshotStore(path, "BTCUSDT")
	ctx := context.Background()

	first := models.NewSnapshot("BTCUSDT", 1, result(models.RegimeRange, 0.9),
		[]models.AlertEvent{{Kind: models.AlertStrongTrendConfirmed, Confidence: 0.9}})
	require.NoError(t, store.Write(ctx, first))

	second := models.NewSnapshot("BTCUSDT", 2, result(models.RegimeSqueeze, 0.6), nil)
	require.NoError(t, store.Write(ctx, second))

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), *got.Timestamp)
	// previous cycle's alerts are gone, not appended
	assert.Empty(t, got.Alerts)

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func result(regime models.Regime, conf float64) models.ClassificationResult {
	return models.ClassificationResult{
		Regime:       regime,
		Confidence:   conf,
		Distribution: map[models.Regime]float64{regime: conf},
	}
}

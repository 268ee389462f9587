package features

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RegimeWatch/internal/domain/models"
)

func mergedSeries(n int) []models.MergedBar {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.MergedBar, n)
	for i := range out {
		price := 100.0 + float64(i)
		fine := models.Candle{
			Bucket: t0.Add(time.Duration(i) * 5 * time.Minute),
			Open:   price, High: price + 2, Low: price - 2, Close: price + 1,
			Volume: 10 + float64(i%7),
		}
		coarse := fine
		coarse.Close = price * 2
		out[i] = models.MergedBar{Bucket: fine.Bucket, Fine: fine, Coarse: coarse}
	}
	return out
}

func TestBuildWindowShapeAndOrder(t *testing.T) {
	merged := mergedSeries(40)
	names := []string{"ret_5m", "range_5m", "vol_z_5m", "sma_dist_15m"}

	window, err := BuildWindow(merged, names, 10, "5m", "15m")
	require.NoError(t, err)
	require.Len(t, window, 10)
	for _, row := range window {
		require.Len(t, row, len(names))
	}

	// column 0 is the fine log return of the corresponding trailing bars
	lastRet := math.Log(merged[39].Fine.Close / merged[38].Fine.Close)
	assert.InDelta(t, lastRet, window[9][0], 1e-12)

	// column 1 is the fine range pct
	b := merged[39].Fine
	assert.InDelta(t, (b.High-b.Low)/b.Close, window[9][1], 1e-12)
}

func TestBuildWindowCoarseSeriesUsesCoarseBars(t *testing.T) {
	merged := mergedSeries(30)
	window, err := BuildWindow(merged, []string{"ret_15m"}, 5, "5m", "15m")
	require.NoError(t, err)

	last := math.Log(merged[29].Coarse.Close / merged[28].Coarse.Close)
	assert.InDelta(t, last, window[4][0], 1e-12)
}

func TestBuildWindowInsufficientRows(t *testing.T) {
	// vol_z needs rollWindow warmup; 22 rows cannot fill a 10-step window
	merged := mergedSeries(22)
	_, err := BuildWindow(merged, []string{"vol_z_5m"}, 10, "5m", "15m")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))
}

func TestBuildWindowRejectsUnknownFeature(t *testing.T) {
	merged := mergedSeries(40)

	_, err := BuildWindow(merged, []string{"zscore_5m"}, 5, "5m", "15m")
	assert.Error(t, err)

	_, err = BuildWindow(merged, []string{"ret_1h"}, 5, "5m", "15m")
	assert.Error(t, err)

	_, err = BuildWindow(merged, []string{"ret"}, 5, "5m", "15m")
	assert.Error(t, err)
}

func TestBuildWindowRealizedVolWarmup(t *testing.T) {
	merged := mergedSeries(40)
	window, err := BuildWindow(merged, []string{"rv_5m"}, 5, "5m", "15m")
	require.NoError(t, err)

	// deterministic drifting series still has positive realized vol
	for _, row := range window {
		assert.Greater(t, row[0], 0.0)
	}
}

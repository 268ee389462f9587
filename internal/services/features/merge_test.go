package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RegimeWatch/internal/domain/models"
)

func bar(t time.Time, close float64) models.Candle {
	return models.Candle{Bucket: t, Symbol: "BTCUSDT", Open: close, High: close, Low: close, Close: close, Volume: 1}
}

func TestMergeTimeframesBackwardJoin(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	fine := []models.Candle{
		bar(t0, 1),
		bar(t0.Add(5*time.Minute), 2),
		bar(t0.Add(10*time.Minute), 3),
		bar(t0.Add(15*time.Minute), 4),
		bar(t0.Add(20*time.Minute), 5),
	}
	coarse := []models.Candle{
		bar(t0, 100),
		bar(t0.Add(15*time.Minute), 200),
	}

	merged := MergeTimeframes(fine, coarse)
	require.Len(t, merged, 5)

	// first three fine bars pair with the first coarse bar
	for i := 0; i < 3; i++ {
		assert.Equal(t, 100.0, merged[i].Coarse.Close, "row %d", i)
	}
	// the 15m fine bar picks up the new coarse bar at exactly its bucket
	assert.Equal(t, 200.0, merged[3].Coarse.Close)
	assert.Equal(t, 200.0, merged[4].Coarse.Close)

	// fine timeline preserved
	for i, f := range fine {
		assert.Equal(t, f.Bucket, merged[i].Bucket)
		assert.Equal(t, f.Close, merged[i].Fine.Close)
	}
}

func TestMergeTimeframesDropsFineBeforeFirstCoarse(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	fine := []models.Candle{
		bar(t0, 1),
		bar(t0.Add(5*time.Minute), 2),
		bar(t0.Add(10*time.Minute), 3),
	}
	coarse := []models.Candle{bar(t0.Add(10*time.Minute), 100)}

	merged := MergeTimeframes(fine, coarse)
	require.Len(t, merged, 1)
	assert.Equal(t, 3.0, merged[0].Fine.Close)
}

func TestMergeTimeframesEmptyInputs(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Nil(t, MergeTimeframes(nil, []models.Candle{bar(t0, 1)}))
	assert.Nil(t, MergeTimeframes([]models.Candle{bar(t0, 1)}, nil))
}

package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RegimeWatch/internal/domain/models"
)

func testMetadata() *ModelMetadata {
	return &ModelMetadata{
		TimeSteps: 3,
		Features:  []string{"ret_5m", "range_15m"},
		RegimeMap: map[string]int{
			"STRONG_TREND":    0,
			"WEAK_TREND":      1,
			"RANGE":           2,
			"SQUEEZE":         3,
			"CHOPPY_HIGH_VOL": 4,
			"VOLATILITY_SPIKE": 5,
		},
		Scaler: ScalerParams{
			Mean:  []float64{0.5, 1.0},
			Scale: []float64{2.0, 0.0}, // zero scale must not divide by zero
		},
	}
}

func testWindow() [][]float64 {
	return [][]float64{{1.5, 3.0}, {2.5, 4.0}, {0.5, 1.0}}
}

func modelServer(t *testing.T, probs []float64, capture *[][]float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict", r.URL.Path)
		var req struct {
			Window [][]float64 `json:"window"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if capture != nil {
			*capture = req.Window
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"probs": probs})
	}))
}

func TestClassifyScalesAndPicksArgmax(t *testing.T) {
	var got [][]float64
	srv := modelServer(t, []float64{0.05, 0.1, 0.6123456789, 0.1, 0.1, 0.0376543211}, &got)
	defer srv.Close()

	c := NewHTTPClassifier(srv.URL, time.Second, 1, testMetadata())
	res, err := c.Classify(context.Background(), testWindow())
	require.NoError(t, err)

	assert.Equal(t, models.RegimeRange, res.Regime)
	// rounded to 6 decimals
	assert.Equal(t, 0.612346, res.Confidence)
	assert.Len(t, res.Distribution, 6)
	assert.Equal(t, 0.612346, res.Distribution[models.RegimeRange])

	// standard scaler applied per timestep; zero scale treated as 1
	require.Len(t, got, 3)
	assert.InDelta(t, (1.5-0.5)/2.0, got[0][0], 1e-12)
	assert.InDelta(t, 3.0-1.0, got[0][1], 1e-12)
}

func TestClassifyShapeMismatch(t *testing.T) {
	c := NewHTTPClassifier("http://localhost:1", time.Second, 1, testMetadata())

	_, err := c.Classify(context.Background(), [][]float64{{1, 2}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrShapeMismatch))

	_, err = c.Classify(context.Background(), [][]float64{{1}, {2}, {3}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrShapeMismatch))
}

func TestClassifyWrongScoreCount(t *testing.T) {
	srv := modelServer(t, []float64{0.5, 0.5}, nil)
	defer srv.Close()

	c := NewHTTPClassifier(srv.URL, time.Second, 1, testMetadata())
	_, err := c.Classify(context.Background(), testWindow())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrModelFailure))
}

func TestClassifyServiceDown(t *testing.T) {
	c := NewHTTPClassifier("http://127.0.0.1:1", 200*time.Millisecond, 1, testMetadata())
	_, err := c.Classify(context.Background(), testWindow())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrModelFailure))
}

func TestClassifyRetriesTransientFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"probs": []float64{0.9, 0.02, 0.02, 0.02, 0.02, 0.02},
		})
	}))
	defer srv.Close()

	c := NewHTTPClassifier(srv.URL, time.Second, 3, testMetadata())
	res, err := c.Classify(context.Background(), testWindow())
	require.NoError(t, err)
	assert.Equal(t, models.RegimeStrongTrend, res.Regime)
	assert.Equal(t, 2, calls)
}

func TestLoadMetadataValidation(t *testing.T) {
	dir := t.TempDir()
	write := func(m interface{}) string {
		b, err := json.Marshal(m)
		require.NoError(t, err)
		path := filepath.Join(dir, "meta.json")
		require.NoError(t, os.WriteFile(path, b, 0o644))
		return path
	}

	good := testMetadata()
	loaded, err := LoadMetadata(write(good))
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.TimeSteps)

	regimes := loaded.IndexToRegime()
	require.Len(t, regimes, 6)
	assert.Equal(t, models.RegimeStrongTrend, regimes[0])
	assert.Equal(t, models.RegimeVolatilitySpike, regimes[5])

	bad := testMetadata()
	bad.RegimeMap["SIDEWAYS_DRIFT"] = 1
	_, err = LoadMetadata(write(bad))
	assert.Error(t, err)

	bad = testMetadata()
	bad.Scaler.Mean = []float64{0.5}
	_, err = LoadMetadata(write(bad))
	assert.Error(t, err)

	bad = testMetadata()
	bad.RegimeMap["RANGE"] = 0 // duplicate index
	_, err = LoadMetadata(write(bad))
	assert.Error(t, err)
}

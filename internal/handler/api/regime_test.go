package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RegimeWatch/internal/domain/models"
	internalrepo "RegimeWatch/internal/repository"
	applogger "RegimeWatch/pkg/logger"
)

type apiEnvelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*echo.Echo, *internalrepo.FileSnapshotStore, *internalrepo.FileSubscriberStore) {
	t.Helper()
	dir := t.TempDir()
	snaps := internalrepo.NewFileSnapshotStore(filepath.Join(dir, "state.json"), "BTCUSDT")
	subs := internalrepo.NewFileSubscriberStore(filepath.Join(dir, "subscribers.json"))

	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)

	e := echo.New()
	NewRegimeHandler(l, snaps, subs).RegisterRoutes(e)
	return e, snaps, subs
}

func doRequest(t *testing.T, e *echo.Echo, method, path string) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env apiEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestHealth(t *testing.T) {
	e, _, _ := newTestServer(t)
	rec, env := doRequest(t, e, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, env.Status)
}

func TestCurrentRegimeDefaultThenWritten(t *testing.T) {
	e, snaps, _ := newTestServer(t)

	_, env := doRequest(t, e, http.MethodGet, "/api/regime/current")
	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, "BTCUSDT", snap.Symbol)
	assert.Nil(t, snap.Regime)
	assert.Empty(t, snap.Alerts)

	res := models.ClassificationResult{
		Regime:       models.RegimeStrongTrend,
		Confidence:   0.82,
		Distribution: map[models.Regime]float64{models.RegimeStrongTrend: 0.82},
	}
	alerts := []models.AlertEvent{{Kind: models.AlertStrongTrendConfirmed, Confidence: 0.82}}
	require.NoError(t, snaps.Write(context.Background(), models.NewSnapshot("BTCUSDT", 1748800000, res, alerts)))

	_, env = doRequest(t, e, http.MethodGet, "/api/regime/current")
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	require.NotNil(t, snap.Regime)
	assert.Equal(t, models.RegimeStrongTrend, *snap.Regime)
	assert.Len(t, snap.Alerts, 1)
}

func TestAlertsSubView(t *testing.T) {
	e, snaps, _ := newTestServer(t)

	res := models.ClassificationResult{
		Regime:       models.RegimeSqueeze,
		Confidence:   0.6,
		Distribution: map[models.Regime]float64{models.RegimeSqueeze: 0.6},
	}
	alerts := []models.AlertEvent{{
		Kind: models.AlertRegimeChange,
		From: models.RegimeRange, To: models.RegimeSqueeze, Confidence: 0.6,
	}}
	require.NoError(t, snaps.Write(context.Background(), models.NewSnapshot("BTCUSDT", 99, res, alerts)))

	_, env := doRequest(t, e, http.MethodGet, "/api/regime/alerts")
	var view struct {
		Timestamp *int64              `json:"timestamp"`
		Alerts    []models.AlertEvent `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.NotNil(t, view.Timestamp)
	assert.Equal(t, int64(99), *view.Timestamp)
	require.Len(t, view.Alerts, 1)
	assert.Equal(t, models.AlertRegimeChange, view.Alerts[0].Kind)
}

func TestSubscriberLifecycleOverHTTP(t *testing.T) {
	e, _, _ := newTestServer(t)

	// implicit creation with all-off defaults
	_, env := doRequest(t, e, http.MethodGet, "/api/subscribers/555")
	var sub models.Subscriber
	require.NoError(t, json.Unmarshal(env.Data, &sub))
	assert.Equal(t, "555", sub.ID)
	assert.False(t, sub.WantsAlert(models.AlertRegimeChange))

	rec, env := doRequest(t, e, http.MethodPost, "/api/subscribers/555/alerts/REGIME_CHANGE/toggle")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &sub))
	assert.True(t, sub.WantsAlert(models.AlertRegimeChange))

	_, env = doRequest(t, e, http.MethodPost, "/api/subscribers/555/regimes/SQUEEZE/toggle")
	require.NoError(t, json.Unmarshal(env.Data, &sub))
	assert.True(t, sub.WantsRegime(models.RegimeSqueeze))
}

func TestToggleRejectsUnknownMembers(t *testing.T) {
	e, _, _ := newTestServer(t)

	_, env := doRequest(t, e, http.MethodPost, "/api/subscribers/1/alerts/EARTHQUAKE/toggle")
	assert.Equal(t, http.StatusBadRequest, env.Status)

	_, env = doRequest(t, e, http.MethodPost, "/api/subscribers/1/regimes/SIDEWAYS/toggle")
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

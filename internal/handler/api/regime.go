package api

import (
	models "RegimeWatch/internal/domain/models"
	drepo "RegimeWatch/internal/domain/repository"
	xhttp "RegimeWatch/pkg/http"
	xlogger "RegimeWatch/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RegimeHandler exposes the query and subscriber configuration surface.
type RegimeHandler struct {
	logger *xlogger.Logger
	snaps  drepo.SnapshotStore
	subs   drepo.SubscriberStore
}

func NewRegimeHandler(logger *xlogger.Logger, snaps drepo.SnapshotStore, subs drepo.SubscriberStore) *RegimeHandler {
	return &RegimeHandler{logger: logger, snaps: snaps, subs: subs}
}

func (h *RegimeHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	g := e.Group("/api")
	g.GET("/regime/current", h.Current)
	g.GET("/regime/alerts", h.Alerts)
	g.GET("/subscribers/:id", h.Subscriber)
	g.POST("/subscribers/:id/alerts/:kind/toggle", h.ToggleAlert)
	g.POST("/subscribers/:id/regimes/:regime/toggle", h.ToggleRegime)
}

func (h *RegimeHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// Current returns the latest snapshot; before any cycle has completed this
// is the documented all-null default.
func (h *RegimeHandler) Current(c echo.Context) error {
	snap, err := h.snaps.Read(c.Request().Context())
	if err != nil {
		h.logger.Error("snapshot read error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, snap)
}

type alertsView struct {
	Timestamp *int64              `json:"timestamp"`
	Alerts    []models.AlertEvent `json:"alerts"`
}

// Alerts returns the alerts emitted by the most recent cycle only.
func (h *RegimeHandler) Alerts(c echo.Context) error {
	req := &models.AlertsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap, err := h.snaps.Read(c.Request().Context())
	if err != nil {
		h.logger.Error("snapshot read error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	alerts := snap.Alerts
	if len(alerts) > req.Limit {
		alerts = alerts[:req.Limit]
	}
	return xhttp.SuccessResponse(c, &alertsView{Timestamp: snap.Timestamp, Alerts: alerts})
}

func (h *RegimeHandler) Subscriber(c echo.Context) error {
	req := &models.SubscriberRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sub, err := h.subs.GetOrCreate(c.Request().Context(), req.ID)
	if err != nil {
		h.logger.Error("subscriber load error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, sub)
}

func (h *RegimeHandler) ToggleAlert(c echo.Context) error {
	req := &models.ToggleAlertRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	kind, ok := models.ParseAlertKind(req.Kind)
	if !ok {
		return xhttp.BadRequestResponse(c, map[string]string{"error": "unknown alert kind: " + req.Kind})
	}

	sub, err := h.subs.ToggleAlert(c.Request().Context(), req.ID, kind)
	if err != nil {
		h.logger.Error("toggle alert error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, sub)
}

func (h *RegimeHandler) ToggleRegime(c echo.Context) error {
	req := &models.ToggleRegimeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	regime, ok := models.ParseRegime(req.Regime)
	if !ok {
		return xhttp.BadRequestResponse(c, map[string]string{"error": "unknown regime: " + req.Regime})
	}

	sub, err := h.subs.ToggleRegime(c.Request().Context(), req.ID, regime)
	if err != nil {
		h.logger.Error("toggle regime error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, sub)
}

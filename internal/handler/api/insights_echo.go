package api

import (
	"net/http"

	models "AlphaPull/internal/domain/models"
	"AlphaPull/internal/service/ratelimit"
	"AlphaPull/internal/usecase"
	xhttp "AlphaPull/pkg/http"
	xlogger "AlphaPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// per-client budget for on-demand generation; cycles are expensive
const (
	limiterCapacity  = 5
	limiterRefillSec = 0.5
)

// InsightsEchoHandler exposes on-demand insight generation and risk
// reporting over HTTP.
type InsightsEchoHandler struct {
	logger  *xlogger.Logger
	cycle   *usecase.InsightCycle
	risk    *usecase.RiskReporter
	limiter *ratelimit.Limiter
	healthy func() bool
}

func NewInsightsEchoHandler(logger *xlogger.Logger, cycle *usecase.InsightCycle, risk *usecase.RiskReporter, healthy func() bool) *InsightsEchoHandler {
	return &InsightsEchoHandler{
		logger:  logger,
		cycle:   cycle,
		risk:    risk,
		limiter: ratelimit.New(),
		healthy: healthy,
	}
}

func (h *InsightsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/insights", h.Insights)
	g.GET("/risk", h.Risk)
	e.GET("/health", h.Health)
}

// Insights runs one generation cycle over the requested symbols and returns
// the consensus insights.
func (h *InsightsEchoHandler) Insights(c echo.Context) error {
	if !h.limiter.Allow(c.RealIP(), limiterCapacity, limiterRefillSec) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limit exceeded")
	}

	req := &models.InsightsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	insights, err := h.cycle.Run(c.Request().Context(), req.Symbols)
	if err != nil {
		h.logger.Error("insights usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, insights)
}

// Risk returns annualized risk metrics for a single symbol.
func (h *InsightsEchoHandler) Risk(c echo.Context) error {
	if !h.limiter.Allow(c.RealIP(), limiterCapacity, limiterRefillSec) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limit exceeded")
	}

	req := &models.RiskRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.risk.Report(c.Request().Context(), req.Symbol, req.N)
	if err != nil {
		h.logger.Error("risk usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, report)
}

// Health reports readiness, including downstream connectivity when a check
// is wired.
func (h *InsightsEchoHandler) Health(c echo.Context) error {
	status := map[string]interface{}{"status": "ok"}
	if h.healthy != nil && !h.healthy() {
		status["status"] = "degraded"
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, status)
	}
	return xhttp.SuccessResponse(c, status)
}

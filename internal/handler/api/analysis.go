package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/service/ratelimit"
	"MarketPulse/internal/usecase"
	xhttp "MarketPulse/pkg/http"
	"MarketPulse/pkg/logger"
)

// AnalysisHandler exposes the analysis and instrument endpoints.
type AnalysisHandler struct {
	analyzer  *usecase.Analyzer
	directory *usecase.Directory
	limiter   *ratelimit.Limiter
	log       *logger.Logger
}

// NewAnalysisHandler creates the handler.
func NewAnalysisHandler(
	analyzer *usecase.Analyzer,
	directory *usecase.Directory,
	limiter *ratelimit.Limiter,
	log *logger.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer:  analyzer,
		directory: directory,
		limiter:   limiter,
		log:       log.With("api"),
	}
}

// RegisterRoutes attaches the API routes.
func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api", h.rateLimit)
	g.GET("/analyze", h.Analyze)
	g.GET("/instruments/top", h.TopInstruments)

	e.GET("/healthz", h.Health)
}

// Analyze handles GET /api/analyze?ticker=SBER&mode=short_term.
func (h *AnalysisHandler) Analyze(c echo.Context) error {
	var req models.AnalyzeRequest
	if details := xhttp.ReadAndValidateRequest(c, &req); details != nil {
		return xhttp.BadRequestResponse(c, details)
	}

	result, err := h.analyzer.Analyze(c.Request().Context(), req.Ticker, req.Mode)
	if err != nil {
		return h.analysisError(c, err)
	}
	return xhttp.SuccessResponse(c, result)
}

// TopInstruments handles GET /api/instruments/top?n=5.
func (h *AnalysisHandler) TopInstruments(c echo.Context) error {
	var req models.TopInstrumentsRequest
	if details := xhttp.ReadAndValidateRequest(c, &req); details != nil {
		return xhttp.BadRequestResponse(c, details)
	}

	top, err := h.directory.TopInstruments(c.Request().Context(), req.N)
	if err != nil {
		return h.analysisError(c, err)
	}
	return xhttp.ListResponse(c, top, int64(len(top)))
}

// Health handles GET /healthz.
func (h *AnalysisHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// analysisError maps domain failures to HTTP statuses without leaking
// upstream detail.
func (h *AnalysisHandler) analysisError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("instrument not found"))
	case errors.Is(err, models.ErrInsufficientData):
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError("not enough market data for analysis"))
	case errors.Is(err, models.ErrDataUnavailable):
		return xhttp.AppErrorResponse(c, xhttp.UpstreamError("market data temporarily unavailable"))
	default:
		h.log.Error("request failed", logger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("internal error"))
	}
}

func (h *AnalysisHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
			return xhttp.AppErrorResponse(c,
				xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", http.StatusTooManyRequests))
		}
		return next(c)
	}
}

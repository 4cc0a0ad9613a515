package api

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/session"
	"MarketPulse/internal/usecase"
	xhttp "MarketPulse/pkg/http"
	"MarketPulse/pkg/logger"
)

// DialogueRequest is one step of the guided analysis dialogue.
type DialogueRequest struct {
	SessionID string `json:"session_id" validate:"required,min=1,max=64"`
	Input     string `json:"input" validate:"max=64"`
}

// DialogueReply tells the client what to send next, or carries the final
// analysis result.
type DialogueReply struct {
	State  string                 `json:"state"`
	Prompt string                 `json:"prompt,omitempty"`
	Result *models.AnalysisResult `json:"result,omitempty"`
}

// DialogueHandler drives the multi-step request flow: ask for a ticker, then
// an analysis mode, then run the analysis. State lives server-side keyed by
// session id.
type DialogueHandler struct {
	analyzer *usecase.Analyzer
	sessions *session.Store
	log      *logger.Logger
}

// NewDialogueHandler creates the handler.
func NewDialogueHandler(analyzer *usecase.Analyzer, sessions *session.Store, log *logger.Logger) *DialogueHandler {
	return &DialogueHandler{
		analyzer: analyzer,
		sessions: sessions,
		log:      log.With("dialogue"),
	}
}

// RegisterRoutes attaches the dialogue route.
func (h *DialogueHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/dialogue", h.Step)
}

// Step handles POST /api/dialogue.
func (h *DialogueHandler) Step(c echo.Context) error {
	var req DialogueRequest
	if details := xhttp.ReadAndValidateRequest(c, &req); details != nil {
		return xhttp.BadRequestResponse(c, details)
	}

	sess := h.sessions.Get(req.SessionID)
	input := strings.TrimSpace(req.Input)

	switch sess.State {
	case session.StateIdle:
		h.sessions.AwaitTicker(req.SessionID)
		return xhttp.SuccessResponse(c, DialogueReply{
			State:  session.StateAwaitingTicker.String(),
			Prompt: "send an instrument ticker",
		})

	case session.StateAwaitingTicker:
		if input == "" {
			return xhttp.SuccessResponse(c, DialogueReply{
				State:  session.StateAwaitingTicker.String(),
				Prompt: "send an instrument ticker",
			})
		}
		h.sessions.SetTicker(req.SessionID, strings.ToUpper(input))
		return xhttp.SuccessResponse(c, DialogueReply{
			State:  session.StateAwaitingMode.String(),
			Prompt: "choose a mode: short_term or long_term",
		})

	default: // StateAwaitingMode
		result, err := h.analyzer.Analyze(c.Request().Context(), sess.Ticker, strings.ToLower(input))
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				// Unknown ticker or mode: restart the dialogue from scratch.
				h.sessions.Reset(req.SessionID)
			}
			return h.dialogueError(c, err)
		}
		h.sessions.Reset(req.SessionID)
		return xhttp.SuccessResponse(c, DialogueReply{
			State:  session.StateIdle.String(),
			Result: result,
		})
	}
}

func (h *DialogueHandler) dialogueError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("instrument or mode not found"))
	case errors.Is(err, models.ErrInsufficientData):
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError("not enough market data for analysis"))
	case errors.Is(err, models.ErrDataUnavailable):
		return xhttp.AppErrorResponse(c, xhttp.UpstreamError("market data temporarily unavailable"))
	default:
		h.log.Error("dialogue step failed", logger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("internal error"))
	}
}

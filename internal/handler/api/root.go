// Package api wires the HTTP endpoints to the analysis core.
package api

import "github.com/labstack/echo/v4"

// Root composes every API handler behind one route registrar.
type Root struct {
	analysis *AnalysisHandler
	dialogue *DialogueHandler
}

// NewRoot creates the composite handler.
func NewRoot(analysis *AnalysisHandler, dialogue *DialogueHandler) *Root {
	return &Root{analysis: analysis, dialogue: dialogue}
}

// RegisterRoutes attaches all API routes.
func (r *Root) RegisterRoutes(e *echo.Echo) {
	r.analysis.RegisterRoutes(e)
	r.dialogue.RegisterRoutes(e)
}

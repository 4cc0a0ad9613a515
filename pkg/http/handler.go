package http

import "github.com/labstack/echo/v4"

// Handler is anything that can attach its routes to the Echo instance.
// The server stays agnostic to what the routes serve.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}

// Package router wires the console's HTTP surface onto an echo instance.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ludoteca-console/internal/handler"
)

// RegisterRoutes registers the unauthenticated operational endpoints.
// metrics may be nil, in which case /metrics is not served.
func RegisterRoutes(e *echo.Echo, metrics http.Handler) {
	e.GET("/healthz", handler.Health)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
}

// RegisterConsole registers the entity endpoints under /api. mw runs on
// every route of the group (rate limiting).
func RegisterConsole(e *echo.Echo, h *handler.ConsoleHandler, s *handler.StatusHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/api", mw...)

	// ---- Categories ----
	g.GET("/categories", h.ListCategories)
	g.POST("/categories", h.CreateCategory)
	g.PUT("/categories/:id", h.UpdateCategory)
	g.DELETE("/categories/:id", h.DeleteCategory)

	// ---- Authors ----
	g.GET("/authors", h.ListAuthors)
	g.GET("/authors/page", h.PageAuthors)
	g.POST("/authors", h.CreateAuthor)
	g.PUT("/authors/:id", h.UpdateAuthor)
	g.DELETE("/authors/:id", h.DeleteAuthor)

	// ---- Games ---- (the backend has no delete)
	g.GET("/games", h.ListGames)
	g.POST("/games", h.CreateGame)
	g.PUT("/games/:id", h.UpdateGame)

	// ---- Clients ----
	g.GET("/clients", h.ListClients)
	g.POST("/clients", h.CreateClient)
	g.PUT("/clients/:id", h.UpdateClient)
	g.DELETE("/clients/:id", h.DeleteClient)

	// ---- Loans ----
	g.GET("/loans", h.ListLoans)
	g.POST("/loans", h.CreateLoan)
	g.POST("/loans/validate", h.ValidateLoan)
	g.PUT("/loans/:id", h.UpdateLoan)
	g.DELETE("/loans/:id", h.DeleteLoan)

	// ---- Status ----
	g.GET("/busy", s.Busy)
	g.GET("/notification", s.Notification)
	g.DELETE("/notification", s.ClearNotification)
}

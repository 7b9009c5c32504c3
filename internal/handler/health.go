package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the liveness probe. It does not touch the backend.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

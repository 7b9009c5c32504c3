package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ludoteca-console/internal/backend"
	"github.com/iliyamo/ludoteca-console/internal/loan"
	"github.com/iliyamo/ludoteca-console/internal/notify"
	"github.com/iliyamo/ludoteca-console/internal/service"
)

// writeError maps a service error to a response:
//
//	validation  422 {"error", "reason"}
//	backend     502 {"error", "backendStatus"}
//	timeout     504
//	other       500
func writeError(c echo.Context, err error) error {
	var be *backend.Error
	switch {
	case errors.Is(err, service.ErrValidation):
		body := map[string]any{"error": unwrapValidation(err)}
		if r := loan.Reason(err); r != "" {
			body["reason"] = r
		}
		return c.JSON(http.StatusUnprocessableEntity, body)
	case errors.As(err, &be):
		return c.JSON(http.StatusBadGateway, map[string]any{
			"error":         notify.ErrorText(err),
			"backendStatus": be.Status,
		})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, map[string]string{"error": "backend timed out"})
	}
	c.Logger().Errorf("console: %v", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": notify.GenericError})
}

// unwrapValidation returns the text of the rule that failed, without the
// "validation failed: " prefix.
func unwrapValidation(err error) string {
	type multi interface{ Unwrap() []error }
	if m, ok := err.(multi); ok {
		for _, e := range m.Unwrap() {
			if !errors.Is(e, service.ErrValidation) {
				return e.Error()
			}
		}
	}
	return err.Error()
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}

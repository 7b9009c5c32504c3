package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ludoteca-console/internal/notify"
	"github.com/iliyamo/ludoteca-console/internal/tracker"
)

// StatusHandler serves the progress indicator and the notification slot.
type StatusHandler struct {
	Board *tracker.Board
	Notes *notify.Channel
}

func NewStatusHandler(board *tracker.Board, notes *notify.Channel) *StatusHandler {
	if board == nil || notes == nil {
		panic("nil dependency passed to NewStatusHandler")
	}
	return &StatusHandler{Board: board, Notes: notes}
}

// Busy serves GET /api/busy. With ?page= it reports that page only;
// without, the OR of every page plus the per-page flags.
func (h *StatusHandler) Busy(c echo.Context) error {
	if page := c.QueryParam("page"); page != "" {
		t := h.Board.Page(page)
		if t == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown page"})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"page":    page,
			"busy":    t.IsBusy(),
			"pending": t.Pending(),
		})
	}

	pages := map[string]bool{}
	for _, p := range h.Board.Pages() {
		pages[p] = h.Board.Page(p).IsBusy()
	}
	return c.JSON(http.StatusOK, map[string]any{
		"busy":  h.Board.IsBusy(),
		"pages": pages,
	})
}

// Notification serves GET /api/notification: the current message, or 204
// when the slot is empty.
func (h *StatusHandler) Notification(c echo.Context) error {
	msg, ok := h.Notes.Current()
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, msg)
}

// ClearNotification serves DELETE /api/notification.
func (h *StatusHandler) ClearNotification(c echo.Context) error {
	h.Notes.Clear()
	return c.NoContent(http.StatusNoContent)
}

package handler

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ludoteca-console/internal/cache"
	"github.com/iliyamo/ludoteca-console/internal/loan"
	"github.com/iliyamo/ludoteca-console/internal/model"
	"github.com/iliyamo/ludoteca-console/internal/service"
)

// ConsoleHandler exposes the console core over HTTP.
type ConsoleHandler struct {
	Svc *service.Console
}

// NewConsoleHandler panics if svc is nil.
func NewConsoleHandler(svc *service.Console) *ConsoleHandler {
	if svc == nil {
		panic("nil console passed to NewConsoleHandler")
	}
	return &ConsoleHandler{Svc: svc}
}

// listResponse is the cache view of one collection as the view layer sees
// it. Items is always a JSON array.
type listResponse struct {
	Status    cache.Status `json:"status"`
	Items     any          `json:"items"`
	Total     int          `json:"total"`
	Paged     bool         `json:"paged"`
	FetchedAt *time.Time   `json:"fetchedAt,omitempty"`
	Error     string       `json:"error,omitempty"`
}

func toResponse(v cache.View) listResponse {
	r := listResponse{
		Status: v.Status,
		Items:  v.Snapshot.Items,
		Total:  v.Snapshot.Total,
		Paged:  v.Snapshot.Paged,
	}
	if r.Items == nil {
		r.Items = []any{}
	}
	if v.HasData() {
		at := v.Snapshot.FetchedAt
		r.FetchedAt = &at
	}
	if v.Err != nil {
		r.Error = v.Err.Error()
	}
	return r
}

// list serves one cached collection. By default it never blocks and
// reports pending/stale state. ?wait=true blocks for fresh data and
// ?refresh=true retries an errored or outdated entry.
func (h *ConsoleHandler) list(c echo.Context, key cache.Key) error {
	ctx := c.Request().Context()

	if queryBool(c, "wait") {
		if queryBool(c, "refresh") {
			h.Svc.Refetch(ctx, key)
		}
		snap, err := h.Svc.Fetch(ctx, key)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, toResponse(cache.View{Key: key, Status: cache.StatusFresh, Snapshot: snap}))
	}

	var v cache.View
	if queryBool(c, "refresh") {
		v = h.Svc.Refetch(ctx, key)
	} else {
		v = h.Svc.Read(ctx, key)
	}
	if v.Status == cache.StatusError {
		return c.JSON(http.StatusBadGateway, toResponse(v))
	}
	return c.JSON(http.StatusOK, toResponse(v))
}

func queryBool(c echo.Context, name string) bool {
	switch strings.ToLower(c.QueryParam(name)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// ---- Categories ----

func (h *ConsoleHandler) ListCategories(c echo.Context) error {
	return h.list(c, service.CategoriesKey())
}

func (h *ConsoleHandler) CreateCategory(c echo.Context) error {
	var body model.Category
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	body.ID = ""
	out, err := h.Svc.SaveCategory(c.Request().Context(), body)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ConsoleHandler) UpdateCategory(c echo.Context) error {
	var body model.Category
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	body.ID = c.Param("id")
	out, err := h.Svc.SaveCategory(c.Request().Context(), body)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ConsoleHandler) DeleteCategory(c echo.Context) error {
	if err := h.Svc.DeleteCategory(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ---- Authors ----

// ListAuthors returns the full author list used by game forms.
func (h *ConsoleHandler) ListAuthors(c echo.Context) error {
	return h.list(c, service.AuthorsKey())
}

// PageAuthors serves GET /api/authors/page?pageNumber=&pageSize=.
func (h *ConsoleHandler) PageAuthors(c echo.Context) error {
	p, ok := model.PageableFromValues(c.QueryParams())
	if !ok {
		return badRequest(c, "pageNumber and pageSize are required")
	}
	return h.list(c, service.AuthorPageKey(p))
}

func (h *ConsoleHandler) CreateAuthor(c echo.Context) error {
	var body model.Author
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	body.ID = ""
	out, err := h.Svc.SaveAuthor(c.Request().Context(), body)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ConsoleHandler) UpdateAuthor(c echo.Context) error {
	var body model.Author
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	body.ID = c.Param("id")
	out, err := h.Svc.SaveAuthor(c.Request().Context(), body)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ConsoleHandler) DeleteAuthor(c echo.Context) error {
	if err := h.Svc.DeleteAuthor(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ---- Games ----

// ListGames serves GET /api/games?title=&idCategory=.
func (h *ConsoleHandler) ListGames(c echo.Context) error {
	f := model.GameFilter{
		Title:      strings.TrimSpace(c.QueryParam("title")),
		CategoryID: c.QueryParam("idCategory"),
	}
	return h.list(c, service.GamesKey(f))
}

func (h *ConsoleHandler) CreateGame(c echo.Context) error {
	var body model.Game
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	body.ID = ""
	out, err := h.Svc.SaveGame(c.Request().Context(), body)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ConsoleHandler) UpdateGame(c echo.Context) error {
	var body model.Game
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	body.ID = c.Param("id")
	out, err := h.Svc.SaveGame(c.Request().Context(), body)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ---- Clients ----

func (h *ConsoleHandler) ListClients(c echo.Context) error {
	return h.list(c, service.ClientsKey())
}

func (h *ConsoleHandler) CreateClient(c echo.Context) error {
	var body model.Client
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	body.ID = ""
	out, err := h.Svc.SaveClient(c.Request().Context(), body)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ConsoleHandler) UpdateClient(c echo.Context) error {
	var body model.Client
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	body.ID = c.Param("id")
	out, err := h.Svc.SaveClient(c.Request().Context(), body)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ConsoleHandler) DeleteClient(c echo.Context) error {
	if err := h.Svc.DeleteClient(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ---- Loans ----

// ListLoans serves GET /api/loans?gameId=&clientId=&date=&pageNumber=&pageSize=.
func (h *ConsoleHandler) ListLoans(c echo.Context) error {
	return h.list(c, service.LoansKey(model.LoanFilterFromValues(c.QueryParams())))
}

// decodeLoan reads a loan body in any of the shapes views send.
func decodeLoan(c echo.Context) (model.LoanInput, error) {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return model.LoanInput{}, err
	}
	return loan.Decode(data)
}

func (h *ConsoleHandler) CreateLoan(c echo.Context) error {
	in, err := decodeLoan(c)
	if err != nil {
		return badRequest(c, "invalid request body")
	}
	in.ID = ""
	out, err := h.Svc.SaveLoan(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ConsoleHandler) UpdateLoan(c echo.Context) error {
	in, err := decodeLoan(c)
	if err != nil {
		return badRequest(c, "invalid request body")
	}
	in.ID = c.Param("id")
	out, err := h.Svc.SaveLoan(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ConsoleHandler) DeleteLoan(c echo.Context) error {
	if err := h.Svc.DeleteLoan(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ValidateLoan runs the loan rules without saving anything, so forms can
// enable their submit control.
func (h *ConsoleHandler) ValidateLoan(c echo.Context) error {
	in, err := decodeLoan(c)
	if err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := loan.Validate(in); err != nil {
		return c.JSON(http.StatusOK, map[string]any{
			"valid":  false,
			"reason": loan.Reason(err),
			"error":  err.Error(),
		})
	}
	start, _ := loan.ParseDate(in.StartDate)
	end, _ := loan.ParseDate(in.EndDate)
	return c.JSON(http.StatusOK, map[string]any{
		"valid": true,
		"days":  loan.SpanDays(start, end),
		"loan":  in,
	})
}

package backend

import (
	"context"
	"net/http"

	"github.com/iliyamo/ludoteca-console/internal/model"
)

const (
	categoryPath = "/category"
	authorPath   = "/author"
	gamePath     = "/game"
	clientPath   = "/client"
	loanPath     = "/prestamo"
)

// Categories lists every category.
func (a *API) Categories(ctx context.Context) (model.Page[model.Category], error) {
	return list[model.Category](ctx, a, http.MethodGet, categoryPath, nil, nil)
}

// SaveCategory creates c when it has no id, otherwise updates it.
func (a *API) SaveCategory(ctx context.Context, c model.Category) (model.Category, error) {
	return save(ctx, a, categoryPath, c.ID, c)
}

func (a *API) DeleteCategory(ctx context.Context, id string) error {
	return a.remove(ctx, categoryPath, id)
}

// Authors lists every author, unpaged.
func (a *API) Authors(ctx context.Context) (model.Page[model.Author], error) {
	return list[model.Author](ctx, a, http.MethodGet, authorPath, nil, nil)
}

// AuthorPage fetches one page of authors. The backend takes the page
// selector in the POST body.
func (a *API) AuthorPage(ctx context.Context, p model.Pageable) (model.Page[model.Author], error) {
	body := struct {
		Pageable model.Pageable `json:"pageable"`
	}{p}
	return list[model.Author](ctx, a, http.MethodPost, authorPath, nil, body)
}

func (a *API) SaveAuthor(ctx context.Context, au model.Author) (model.Author, error) {
	return save(ctx, a, authorPath, au.ID, au)
}

func (a *API) DeleteAuthor(ctx context.Context, id string) error {
	return a.remove(ctx, authorPath, id)
}

// Games lists games matching f. The backend serves the filtered listing on
// the trailing-slash path.
func (a *API) Games(ctx context.Context, f model.GameFilter) (model.Page[model.Game], error) {
	return list[model.Game](ctx, a, http.MethodGet, gamePath+"/", f.Values(), nil)
}

func (a *API) SaveGame(ctx context.Context, g model.Game) (model.Game, error) {
	return save(ctx, a, gamePath, g.ID, g)
}

func (a *API) Clients(ctx context.Context) (model.Page[model.Client], error) {
	return list[model.Client](ctx, a, http.MethodGet, clientPath, nil, nil)
}

func (a *API) SaveClient(ctx context.Context, c model.Client) (model.Client, error) {
	return save(ctx, a, clientPath, c.ID, c)
}

func (a *API) DeleteClient(ctx context.Context, id string) error {
	return a.remove(ctx, clientPath, id)
}

// Loans lists loans matching f. The result is paged when f.Page is set or
// when the backend chooses to wrap the response anyway.
func (a *API) Loans(ctx context.Context, f model.LoanFilter) (model.Page[model.Loan], error) {
	return list[model.Loan](ctx, a, http.MethodGet, loanPath, f.Values(), nil)
}

// SaveLoan creates a loan with POST or updates one with PUT /prestamo/{id}.
// The returned loan is the backend's echo when it sent one; otherwise it is
// built from in.
func (a *API) SaveLoan(ctx context.Context, in model.LoanInput) (model.Loan, error) {
	method, path := http.MethodPost, loanPath
	if in.ID != "" {
		method, path = http.MethodPut, loanPath+"/"+escape(in.ID)
	}
	out := model.Loan{
		ID:        in.ID,
		Game:      model.Game{ID: in.GameID},
		Client:    model.Client{ID: in.ClientID},
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
	}
	if err := a.do(ctx, method, path, nil, in, &out); err != nil {
		return model.Loan{}, err
	}
	return out, nil
}

func (a *API) DeleteLoan(ctx context.Context, id string) error {
	return a.remove(ctx, loanPath, id)
}

package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/ludoteca-console/internal/cache"
	"github.com/iliyamo/ludoteca-console/internal/model"
)

// load is the cache.Loader: it turns a key back into the backend call that
// produced it.
func (s *Console) load(ctx context.Context, key cache.Key) (cache.Snapshot, error) {
	params := key.Params()
	switch key.Kind {
	case model.KindCategory:
		return snapshot(s.api.Categories(ctx))
	case model.KindAuthor:
		if !params.Has("pageNumber") && !params.Has("pageSize") {
			return snapshot(s.api.Authors(ctx))
		}
		p, ok := model.PageableFromValues(params)
		if !ok {
			return cache.Snapshot{}, invalid(ErrInvalidPage)
		}
		return snapshot(s.api.AuthorPage(ctx, p))
	case model.KindGame:
		return snapshot(s.api.Games(ctx, model.GameFilter{
			Title:      params.Get("title"),
			CategoryID: params.Get("idCategory"),
		}))
	case model.KindClient:
		return snapshot(s.api.Clients(ctx))
	case model.KindLoan:
		return snapshot(s.api.Loans(ctx, model.LoanFilterFromValues(params)))
	}
	return cache.Snapshot{}, fmt.Errorf("no loader for kind %q", key.Kind)
}

func snapshot[T any](page model.Page[T], err error) (cache.Snapshot, error) {
	if err != nil {
		return cache.Snapshot{}, err
	}
	return cache.Snapshot{Items: page.Content, Total: page.Total, Paged: page.Paged}, nil
}

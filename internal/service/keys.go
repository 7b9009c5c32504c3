package service

import (
	"github.com/iliyamo/ludoteca-console/internal/cache"
	"github.com/iliyamo/ludoteca-console/internal/model"
)

func CategoriesKey() cache.Key { return cache.NewKey(model.KindCategory, nil) }

// AuthorsKey is the full author list used by game forms.
func AuthorsKey() cache.Key { return cache.NewKey(model.KindAuthor, nil) }

// AuthorPageKey is one page of the author listing. Each page number and
// size is its own cache entry.
func AuthorPageKey(p model.Pageable) cache.Key { return cache.NewKey(model.KindAuthor, p.Values()) }

func GamesKey(f model.GameFilter) cache.Key { return cache.NewKey(model.KindGame, f.Values()) }

func ClientsKey() cache.Key { return cache.NewKey(model.KindClient, nil) }

func LoansKey(f model.LoanFilter) cache.Key { return cache.NewKey(model.KindLoan, f.Values()) }

// DefaultKey is the unfiltered listing of kind, the one a page shows when
// first opened.
func DefaultKey(kind model.Kind) cache.Key {
	switch kind {
	case model.KindGame:
		return GamesKey(model.GameFilter{})
	case model.KindLoan:
		return LoansKey(model.LoanFilter{})
	}
	return cache.NewKey(kind, nil)
}

package service

import (
	"github.com/iliyamo/ludoteca-console/internal/model"
	"github.com/iliyamo/ludoteca-console/internal/tracker"
)

// Pages maps each console page to the entity kinds whose requests keep its
// progress indicator on. The loan page lists games and clients in its
// filters; the game page lists categories and authors in its form.
var Pages = map[string][]model.Kind{
	"categories": {model.KindCategory},
	"authors":    {model.KindAuthor},
	"games":      {model.KindGame, model.KindCategory, model.KindAuthor},
	"clients":    {model.KindClient},
	"loans":      {model.KindLoan, model.KindGame, model.KindClient},
}

// WatchPages registers every console page on b.
func WatchPages(b *tracker.Board) {
	for page, kinds := range Pages {
		b.Watch(page, kinds...)
	}
}

// Package invalidation holds the static table that decides which cached
// collections become stale after a successful mutation.
//
// Games embed author data, so an author update also invalidates games.
// Category mutations do not cascade to games: game listings keep only a
// minimal category reference that is refreshed on its own schedule.
package invalidation

import "github.com/iliyamo/ludoteca-console/internal/model"

type rule struct {
	kind model.Kind
	op   model.Operation
}

var table = map[rule][]model.Kind{
	{model.KindCategory, model.OpCreate}: {model.KindCategory},
	{model.KindCategory, model.OpUpdate}: {model.KindCategory},
	{model.KindCategory, model.OpDelete}: {model.KindCategory},

	{model.KindAuthor, model.OpCreate}: {model.KindAuthor},
	{model.KindAuthor, model.OpUpdate}: {model.KindAuthor, model.KindGame},
	{model.KindAuthor, model.OpDelete}: {model.KindAuthor},

	{model.KindGame, model.OpCreate}: {model.KindGame},
	{model.KindGame, model.OpUpdate}: {model.KindGame},

	{model.KindClient, model.OpCreate}: {model.KindClient},
	{model.KindClient, model.OpUpdate}: {model.KindClient},
	{model.KindClient, model.OpDelete}: {model.KindClient},

	{model.KindLoan, model.OpCreate}: {model.KindLoan},
	{model.KindLoan, model.OpUpdate}: {model.KindLoan},
	{model.KindLoan, model.OpDelete}: {model.KindLoan},
}

// DependentsOf returns the kinds whose cached collections must be treated
// as stale after op succeeds on kind. Pairs missing from the table (game
// deletion has no endpoint) fall back to the mutated kind alone. The
// returned slice is a copy.
func DependentsOf(kind model.Kind, op model.Operation) []model.Kind {
	deps, ok := table[rule{kind, op}]
	if !ok {
		if !kind.Valid() {
			return nil
		}
		return []model.Kind{kind}
	}
	out := make([]model.Kind, len(deps))
	copy(out, deps)
	return out
}

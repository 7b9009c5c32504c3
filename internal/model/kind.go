// Package model holds the entities managed by the console and the small
// vocabulary (kinds, operations, filters, pages) shared by the cache, the
// backend client and the service layer.
package model

// Kind names one entity collection. It doubles as the cache tag used when
// deciding which collections a mutation makes stale.
type Kind string

const (
	KindCategory Kind = "category"
	KindAuthor   Kind = "author"
	KindGame     Kind = "game"
	KindClient   Kind = "client"
	KindLoan     Kind = "loan"
)

// Kinds lists every entity kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindCategory, KindAuthor, KindGame, KindClient, KindLoan}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCategory, KindAuthor, KindGame, KindClient, KindLoan:
		return true
	}
	return false
}

// Operation is the kind of mutation applied to an entity.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// SaveOperation picks create or update depending on whether the entity
// already carries an identifier.
func SaveOperation(id string) Operation {
	if id == "" {
		return OpCreate
	}
	return OpUpdate
}

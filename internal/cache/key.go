package cache

import (
	"net/url"

	"github.com/iliyamo/ludoteca-console/internal/model"
)

// Key identifies one cached collection: an entity kind plus the query
// parameters of the read. Changing a page size or a filter is a new key.
type Key struct {
	Kind  model.Kind
	Query string
}

// NewKey builds a key from query parameters. url.Values.Encode sorts by
// parameter name, so equal parameter sets always produce equal keys.
func NewKey(kind model.Kind, params url.Values) Key {
	return Key{Kind: kind, Query: params.Encode()}
}

// Params decodes the query part of the key.
func (k Key) Params() url.Values {
	v, err := url.ParseQuery(k.Query)
	if err != nil {
		return url.Values{}
	}
	return v
}

func (k Key) String() string {
	if k.Query == "" {
		return string(k.Kind)
	}
	return string(k.Kind) + "?" + k.Query
}

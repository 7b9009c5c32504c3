package model

// Page is the single internal shape of every list response. The backend
// answers either with a bare array (Paged false, Total = len(Content)) or
// with a {content, totalElements} envelope (Paged true).
type Page[T any] struct {
	Content []T  `json:"content"`
	Total   int  `json:"totalElements"`
	Paged   bool `json:"-"`
}

// Unpaged wraps a bare list.
func Unpaged[T any](items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Content: items, Total: len(items)}
}

// Paged wraps one page of a larger collection.
func Paged[T any](items []T, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Content: items, Total: total, Paged: true}
}

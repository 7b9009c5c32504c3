package model

import (
	"net/url"
	"strconv"
)

// Pageable selects one page of a paginated listing. Page numbers start at 0.
type Pageable struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

// Valid reports whether p names a real page.
func (p Pageable) Valid() bool {
	return p.PageNumber >= 0 && p.PageSize > 0
}

// Values encodes the page as query parameters.
func (p Pageable) Values() url.Values {
	v := url.Values{}
	v.Set("pageNumber", strconv.Itoa(p.PageNumber))
	v.Set("pageSize", strconv.Itoa(p.PageSize))
	return v
}

// GameFilter narrows the game listing. Empty fields match everything; both
// are always sent so the backend sees the same query shape every time.
type GameFilter struct {
	Title      string
	CategoryID string
}

func (f GameFilter) Values() url.Values {
	v := url.Values{}
	v.Set("title", f.Title)
	v.Set("idCategory", f.CategoryID)
	return v
}

// LoanFilter narrows the loan listing. Date keeps loans whose range covers
// that day. Page is optional; nil requests the unpaged listing.
type LoanFilter struct {
	GameID   string
	ClientID string
	Date     string
	Page     *Pageable
}

func (f LoanFilter) Values() url.Values {
	v := url.Values{}
	if f.GameID != "" {
		v.Set("gameId", f.GameID)
	}
	if f.ClientID != "" {
		v.Set("clientId", f.ClientID)
	}
	if f.Date != "" {
		v.Set("date", DatePart(f.Date))
	}
	if f.Page != nil {
		for k, vals := range f.Page.Values() {
			v[k] = vals
		}
	}
	return v
}

// LoanFilterFromValues is the inverse of LoanFilter.Values.
func LoanFilterFromValues(v url.Values) LoanFilter {
	f := LoanFilter{
		GameID:   v.Get("gameId"),
		ClientID: v.Get("clientId"),
		Date:     v.Get("date"),
	}
	if p, ok := PageableFromValues(v); ok {
		f.Page = &p
	}
	return f
}

// PageableFromValues reads pageNumber/pageSize. ok is false when either is
// missing or malformed.
func PageableFromValues(v url.Values) (Pageable, bool) {
	if !v.Has("pageNumber") || !v.Has("pageSize") {
		return Pageable{}, false
	}
	n, err1 := strconv.Atoi(v.Get("pageNumber"))
	s, err2 := strconv.Atoi(v.Get("pageSize"))
	p := Pageable{PageNumber: n, PageSize: s}
	if err1 != nil || err2 != nil || !p.Valid() {
		return Pageable{}, false
	}
	return p, true
}

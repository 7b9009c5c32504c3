package model

// Author is the designer of one or more games.
type Author struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Nationality string `json:"nationality"`
}

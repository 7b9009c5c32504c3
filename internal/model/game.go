package model

import "strings"

// Game is a lendable item. Category and Author stay nil until the user
// picks them; a game can only be saved once both are set.
type Game struct {
	ID       string    `json:"id,omitempty"`
	Title    string    `json:"title"`
	Age      int       `json:"age"`
	Category *Category `json:"category,omitempty"`
	Author   *Author   `json:"author,omitempty"`
}

// Complete reports whether every field required to create or update the
// game is present.
func (g Game) Complete() bool {
	return strings.TrimSpace(g.Title) != "" &&
		g.Age > 0 &&
		g.Category != nil && g.Category.ID != "" &&
		g.Author != nil && g.Author.ID != ""
}

package model

// Category groups games. Name must be non-empty after trimming.
type Category struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

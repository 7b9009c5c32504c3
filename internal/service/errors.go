package service

import "errors"

// ErrValidation wraps every local rejection. Validation failures block the
// request before it reaches the backend and are never published to the
// notification channel.
var ErrValidation = errors.New("validation failed")

var (
	ErrNameRequired   = errors.New("name is required")
	ErrGameIncomplete = errors.New("title, age, category and author are required")
	ErrIDRequired     = errors.New("id is required")
	ErrInvalidPage    = errors.New("pageNumber must be >= 0 and pageSize > 0")
)

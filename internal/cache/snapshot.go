package cache

import "time"

// Snapshot is the last known server state of one collection. It is
// replaced wholesale on refetch; fields are never merged.
type Snapshot struct {
	Key       Key       `json:"-"`
	Items     any       `json:"items"`
	Total     int       `json:"total"`
	Paged     bool      `json:"paged"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Items returns the snapshot content as a typed slice. It returns nil if
// the snapshot is empty or holds another element type.
func Items[T any](s Snapshot) []T {
	items, _ := s.Items.([]T)
	return items
}

// Status describes what a non-blocking read found.
type Status string

const (
	// StatusPending means no snapshot exists yet and a fetch is underway.
	StatusPending Status = "pending"
	// StatusFresh means the snapshot is current.
	StatusFresh Status = "fresh"
	// StatusStale means the snapshot is outdated and a refetch is underway
	// or about to start. The snapshot is still the one to display.
	StatusStale Status = "stale"
	// StatusError means the last fetch failed. The previous snapshot, if
	// any, is kept alongside the error.
	StatusError Status = "error"
)

// View is the result of a non-blocking read.
type View struct {
	Key      Key
	Status   Status
	Snapshot Snapshot
	Err      error
}

// HasData reports whether the view carries a snapshot worth rendering.
func (v View) HasData() bool {
	return !v.Snapshot.FetchedAt.IsZero()
}

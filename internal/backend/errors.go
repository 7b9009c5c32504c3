package backend

import (
	"errors"
	"fmt"
)

// ErrUnavailable is wrapped by Error when the backend could not be reached
// at all (dial failure, timeout, reset).
var ErrUnavailable = errors.New("backend unavailable")

// Error is a failed backend call: either the backend was unreachable
// (Status 0) or it answered with a non-2xx status. Msg is the "msg" field
// of the error body when the backend sent one.
type Error struct {
	Method string
	Path   string
	Status int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Msg)
	default:
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage is the backend's own explanation, shown verbatim to the user.
func (e *Error) UserMessage() string { return e.Msg }

// StatusOf returns the HTTP status of a backend error, or 0 when err is
// not a backend error or the backend was unreachable.
func StatusOf(err error) int {
	var be *Error
	if errors.As(err, &be) {
		return be.Status
	}
	return 0
}

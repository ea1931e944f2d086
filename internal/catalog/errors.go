package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the catalog has no item at the requested index.
var ErrNotFound = errors.New("catalog item not found")

// HTTPError reports a non-success response other than 404.
type HTTPError struct {
	Status int
	Path   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("catalog %s returned status %d", e.Path, e.Status)
}

// NetworkError reports a request that never produced a response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Error classes returned by Classify.
const (
	ClassNotFound = "not_found"
	ClassHTTP     = "http"
	ClassNetwork  = "network"
	ClassDecode   = "decode"
)

// Classify maps a client error to a short class name for events and logs.
// Errors that are neither HTTP, network nor not-found are decode failures.
func Classify(err error) string {
	var httpErr *HTTPError
	var netErr *NetworkError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return ClassNotFound
	case errors.As(err, &httpErr):
		return ClassHTTP
	case errors.As(err, &netErr):
		return ClassNetwork
	default:
		return ClassDecode
	}
}

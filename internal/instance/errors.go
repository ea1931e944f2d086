package instance

import (
	"errors"

	"github.com/five82/panels/internal/persist"
)

var (
	// ErrCatalogUnavailable means no catalog load has succeeded yet, so no
	// navigation can resolve.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrFetchFailed wraps a failed item request. State is left unchanged.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrIndexOutOfRange reports a resolved target outside [1, count]. Targets
	// are clamped, so this indicates a defect.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrPersistenceUnavailable is the persist package's failure marker.
	ErrPersistenceUnavailable = persist.ErrUnavailable

	// ErrBusy rejects a navigation while another fetch for the same
	// instance is outstanding.
	ErrBusy = errors.New("navigation in progress")

	// ErrUnknownInstance is returned by the registry for an unregistered id.
	ErrUnknownInstance = errors.New("unknown instance")
)

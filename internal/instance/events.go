package instance

import "github.com/five82/panels/internal/catalog"

// EventKind enumerates what an instance reports to its presenter.
type EventKind int

const (
	CatalogReady EventKind = iota + 1
	ItemUpdated
	FetchError
)

func (k EventKind) String() string {
	switch k {
	case CatalogReady:
		return "CATALOG_READY"
	case ItemUpdated:
		return "ITEM_UPDATED"
	case FetchError:
		return "FETCH_ERROR"
	default:
		return "UNKNOWN"
	}
}

// ErrorKind classifies a FetchError event.
type ErrorKind string

const (
	KindCatalogUnavailable     ErrorKind = "catalog_unavailable"
	KindFetchFailed            ErrorKind = "fetch_failed"
	KindPersistenceUnavailable ErrorKind = "persistence_unavailable"
)

// Failure is the payload of a FetchError event.
type Failure struct {
	Kind   ErrorKind
	Class  string // catalog error class, see catalog.Classify
	Detail string
}

// Event is emitted by an instance. Only the fields relevant to Kind are set.
type Event struct {
	Instance string
	Kind     EventKind
	Count    int          // CatalogReady
	Item     catalog.Item // ItemUpdated
	Failure  *Failure     // FetchError
}

// Sink receives events. Publish must not block for long; it is called from
// navigation and timer goroutines.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Publish(e Event) { f(e) }

type discardSink struct{}

func (discardSink) Publish(Event) {}

// failureFor builds an event payload from the unwrapped cause.
func failureFor(kind ErrorKind, err error) *Failure {
	f := &Failure{Kind: kind, Detail: err.Error()}
	if kind != KindPersistenceUnavailable {
		f.Class = catalog.Classify(err)
	}
	return f
}

package state

import (
	"sync"
	"time"

	"github.com/five82/panels/internal/catalog"
	"github.com/five82/panels/internal/instance"
)

// View is the latest data available to the UI for one instance.
type View struct {
	ID                  string
	Item                catalog.Item
	HasItem             bool
	Count               int
	LastUpdated         time.Time
	LastError           *instance.Failure
	ConsecutiveFailures int // fetch failures since the last successful item
}

// IsOffline returns true when the catalog has failed several times in a row.
func (v View) IsOffline() bool {
	return v.ConsecutiveFailures >= 2
}

// Snapshot holds every instance view in first-seen order.
type Snapshot struct {
	Views []View
}

// View returns the view for id.
func (s Snapshot) View(id string) (View, bool) {
	for _, v := range s.Views {
		if v.ID == id {
			return v, true
		}
	}
	return View{}, false
}

// Store folds instance events into views. It implements instance.Sink and
// is safe to use as a zero value.
type Store struct {
	// Now stamps updates. Defaults to time.Now.
	Now func() time.Time

	mu    sync.RWMutex
	views map[string]*View
	order []string
}

var _ instance.Sink = (*Store)(nil)

// Track registers id so it appears in snapshots before its first event.
func (s *Store) Track(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewLocked(id)
}

// Publish applies one event. A FetchError keeps the previous item and
// records the failure; an ItemUpdated clears it.
func (s *Store) Publish(e instance.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.viewLocked(e.Instance)
	v.LastUpdated = s.now()
	switch e.Kind {
	case instance.CatalogReady:
		v.Count = max(v.Count, e.Count)
	case instance.ItemUpdated:
		v.Item = e.Item
		v.HasItem = true
		v.Count = max(v.Count, e.Item.Index)
		v.LastError = nil
		v.ConsecutiveFailures = 0
	case instance.FetchError:
		if e.Failure == nil {
			return
		}
		f := *e.Failure
		v.LastError = &f
		if f.Kind != instance.KindPersistenceUnavailable {
			v.ConsecutiveFailures++
		}
	}
}

// Snapshot returns a copy of every view.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Views: make([]View, 0, len(s.order))}
	for _, id := range s.order {
		v := *s.views[id]
		if v.LastError != nil {
			f := *v.LastError
			v.LastError = &f
		}
		snap.Views = append(snap.Views, v)
	}
	return snap
}

func (s *Store) viewLocked(id string) *View {
	if s.views == nil {
		s.views = make(map[string]*View)
	}
	v, ok := s.views[id]
	if !ok {
		v = &View{ID: id}
		s.views[id] = v
		s.order = append(s.order, id)
	}
	return v
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

package instance

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/five82/panels/internal/catalog"
	"github.com/five82/panels/internal/clock"
	"github.com/five82/panels/internal/persist"
)

// fakeCatalog serves items 1..count. FetchByIndex blocks on gate when set.
type fakeCatalog struct {
	mu          sync.Mutex
	count       int
	latestErr   error
	latestItem  *catalog.Item // served by FetchLatest instead of itemFor(count)
	indexErr    map[int]error
	renumber    map[int]int // FetchByIndex(n) answers with item renumber[n]
	latestCalls int
	indexCalls  []int
	gate        chan struct{}
	entered     chan int
}

func newFakeCatalog(count int) *fakeCatalog {
	return &fakeCatalog{count: count, indexErr: make(map[int]error), renumber: make(map[int]int)}
}

func itemFor(n int) catalog.Item {
	return catalog.Item{Index: n, Title: fmt.Sprintf("Item %d", n), Year: "2020", Month: "1", Day: "2"}
}

func (f *fakeCatalog) FetchLatest(context.Context) (catalog.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latestCalls++
	if f.latestErr != nil {
		return catalog.Item{}, f.latestErr
	}
	if f.latestItem != nil {
		return *f.latestItem, nil
	}
	return itemFor(f.count), nil
}

func (f *fakeCatalog) FetchByIndex(_ context.Context, n int) (catalog.Item, error) {
	f.mu.Lock()
	f.indexCalls = append(f.indexCalls, n)
	gate, entered := f.gate, f.entered
	f.mu.Unlock()

	if gate != nil {
		entered <- n
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.indexErr[n]; err != nil {
		return catalog.Item{}, err
	}
	if n < 1 || n > f.count {
		return catalog.Item{}, fmt.Errorf("fetch item %d: %w", n, catalog.ErrNotFound)
	}
	if m, ok := f.renumber[n]; ok {
		return itemFor(m), nil
	}
	return itemFor(n), nil
}

func (f *fakeCatalog) setLatestErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latestErr = err
}

func (f *fakeCatalog) setLatestItem(item catalog.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latestItem = &item
}

func (f *fakeCatalog) setRenumber(n, m int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renumber[n] = m
}

func (f *fakeCatalog) setIndexErr(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexErr[n] = err
}

func (f *fakeCatalog) calls() (latest int, byIndex []int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latestCalls, append([]int(nil), f.indexCalls...)
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) ofKind(kind EventKind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// recordingStore remembers every Put in order.
type recordingStore struct {
	*persist.MemoryStore
	mu   sync.Mutex
	puts []string
}

func (s *recordingStore) Put(key string, data []byte) error {
	s.mu.Lock()
	s.puts = append(s.puts, string(data))
	s.mu.Unlock()
	return s.MemoryStore.Put(key, data)
}

type harness struct {
	reg   *Registry
	clk   *clock.FakeClock
	cat   *fakeCatalog
	rec   *recorder
	store *persist.MemoryStore
}

func newHarness(t *testing.T, count int) *harness {
	t.Helper()
	h := &harness{
		clk:   clock.Fake(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
		cat:   newFakeCatalog(count),
		rec:   &recorder{},
		store: persist.NewMemoryStore(),
	}
	h.reg = NewRegistry(RegistryConfig{
		Fetcher: h.cat,
		Clock:   h.clk,
		Sink:    h.rec,
		Stores: map[PersistenceMode]persist.Store{
			PersistLocal:  h.store,
			PersistRemote: h.store,
		},
		Rand: rand.New(rand.NewPCG(1, 2)).IntN,
	})
	return h
}

// instance registers id with defaults adjusted by mutate.
func (h *harness) instance(t *testing.T, id string, mutate func(*Options)) *Instance {
	t.Helper()
	opts := DefaultOptions()
	opts.Persistence = PersistRemote
	if mutate != nil {
		mutate(&opts)
	}
	in, err := h.reg.GetOrCreate(id, opts)
	if err != nil {
		t.Fatalf("GetOrCreate(%q) returned error: %v", id, err)
	}
	return in
}

func currentIndex(t *testing.T, in *Instance) int {
	t.Helper()
	item, ok := in.Navigator.Current()
	if !ok {
		t.Fatal("instance has no current item")
	}
	return item.Index
}

func mustStart(t *testing.T, in *Instance) {
	t.Helper()
	if err := in.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
}

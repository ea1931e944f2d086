package instance

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/five82/panels/internal/catalog"
	"github.com/five82/panels/internal/persist"
)

// NavigatorConfig wires a Navigator.
type NavigatorConfig struct {
	ID        string
	Fetcher   catalog.Fetcher
	Bootstrap *catalog.Bootstrap // shared first load; built from Fetcher when nil
	Pointer   *persist.Pointer   // nil disables persistence
	Sink      Sink
	Logger    *slog.Logger
	Initial   InitialPosition
	Sequence  SequencePolicy

	// Rand returns a uniform integer in [0, n). Defaults to rand.IntN.
	Rand func(n int) int
	// Rearm runs after every successful navigation.
	Rearm func()
}

// Navigator owns one instance's current item and catalog bound. At most one
// fetch is outstanding at a time; a request that arrives meanwhile fails
// with ErrBusy and changes nothing.
type Navigator struct {
	id       string
	fetcher  catalog.Fetcher
	boot     *catalog.Bootstrap
	pointer  *persist.Pointer
	sink     Sink
	logger   *slog.Logger
	initial  InitialPosition
	sequence SequencePolicy
	rand     func(int) int
	rearm    func()

	catalog catalog.State

	mu       sync.Mutex
	current  *catalog.Item
	latest   *catalog.Item
	inFlight bool

	// Guarded by inFlight.
	pointerRead  bool
	persisted    int
	hasPersisted bool
}

// NewNavigator builds a Navigator. Fetcher is required.
func NewNavigator(cfg NavigatorConfig) *Navigator {
	n := &Navigator{
		id:       cfg.ID,
		fetcher:  cfg.Fetcher,
		boot:     cfg.Bootstrap,
		pointer:  cfg.Pointer,
		sink:     cfg.Sink,
		logger:   cfg.Logger,
		initial:  cfg.Initial,
		sequence: cfg.Sequence,
		rand:     cfg.Rand,
		rearm:    cfg.Rearm,
	}
	if n.boot == nil {
		n.boot = catalog.NewBootstrap(cfg.Fetcher)
	}
	if n.sink == nil {
		n.sink = discardSink{}
	}
	if n.logger == nil {
		n.logger = slog.New(slog.DiscardHandler)
	}
	if n.rand == nil {
		n.rand = rand.IntN
	}
	if n.sequence == "" {
		n.sequence = SequenceDefault
	}
	return n
}

// ID returns the owning instance id.
func (n *Navigator) ID() string { return n.id }

// Current returns the item on display, if any.
func (n *Navigator) Current() (catalog.Item, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return catalog.Item{}, false
	}
	return *n.current, true
}

// Count returns the catalog bound this navigator has observed.
func (n *Navigator) Count() (int, bool) { return n.catalog.Count() }

// Busy reports whether a fetch is outstanding.
func (n *Navigator) Busy() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.inFlight
}

// Started reports whether start-up resolution has produced an item.
func (n *Navigator) Started() bool {
	_, ok := n.Current()
	return ok
}

// Start resolves the first item: the persisted pointer when one exists,
// otherwise the initial position. Once an item is on display, Start
// re-announces it instead of navigating again.
func (n *Navigator) Start(ctx context.Context) error {
	if item, ok := n.Current(); ok {
		if count, known := n.catalog.Count(); known {
			n.emit(Event{Kind: CatalogReady, Count: count})
		}
		n.emit(Event{Kind: ItemUpdated, Item: item})
		return nil
	}
	return n.navigate(ctx, "start", n.resolveStart)
}

// First moves to index 1.
func (n *Navigator) First(ctx context.Context) error {
	return n.navigate(ctx, "first", func(int, bool, int) target {
		return target{index: 1}
	})
}

// Latest fetches the newest item, which may grow the known bound.
func (n *Navigator) Latest(ctx context.Context) error {
	return n.navigate(ctx, "latest", func(int, bool, int) target {
		return target{latest: true}
	})
}

// Previous moves one index back and wraps from 1 to the latest item.
func (n *Navigator) Previous(ctx context.Context) error {
	return n.navigate(ctx, "previous", func(ref int, ok bool, _ int) target {
		if ok && ref > 1 {
			return target{index: ref - 1}
		}
		return target{latest: true}
	})
}

// Next moves one index forward and wraps from the bound to index 1.
func (n *Navigator) Next(ctx context.Context) error {
	return n.navigate(ctx, "next", func(ref int, ok bool, count int) target {
		if ok && ref < count {
			return target{index: ref + 1}
		}
		return target{index: 1}
	})
}

// Random moves to a uniformly drawn index in [1, count]. The draw may land
// on the current item.
func (n *Navigator) Random(ctx context.Context) error {
	return n.navigate(ctx, "random", func(_ int, _ bool, count int) target {
		return target{index: n.draw(count)}
	})
}

// Goto moves to k clamped into [1, count].
func (n *Navigator) Goto(ctx context.Context, k int) error {
	return n.navigate(ctx, "goto", func(int, bool, int) target {
		return target{index: n.clamp(k)}
	})
}

// AutoAdvance performs one scheduled step in the configured sequence. Until
// start-up has produced an item it retries start-up resolution instead.
func (n *Navigator) AutoAdvance(ctx context.Context) error {
	if !n.Started() {
		return n.Start(ctx)
	}
	switch n.sequence {
	case SequenceRandom:
		return n.Random(ctx)
	case SequenceReverse:
		return n.Previous(ctx)
	case SequenceLatest:
		return n.Latest(ctx)
	default:
		return n.Next(ctx)
	}
}

// target is a resolved navigation destination.
type target struct {
	latest bool
	index  int
	cached *catalog.Item // already loaded; no fetch needed
}

// resolver picks a target from the reference index (the current item, else
// the persisted pointer) and the known bound.
type resolver func(ref int, hasRef bool, count int) target

func (n *Navigator) resolveStart(ref int, hasRef bool, count int) target {
	if hasRef {
		return target{index: ref}
	}
	switch n.initial.Kind {
	case PositionFirst:
		return target{index: 1}
	case PositionRandom:
		return target{index: n.draw(count)}
	case PositionIndex:
		return target{index: n.clamp(n.initial.Index)}
	default:
		n.mu.Lock()
		latest := n.latest
		n.mu.Unlock()
		if latest != nil && latest.Index == count {
			return target{cached: latest}
		}
		return target{latest: true}
	}
}

func (n *Navigator) navigate(ctx context.Context, op string, resolve resolver) error {
	if !n.begin() {
		n.logger.Debug("navigation dropped while busy", "instance", n.id, "op", op)
		return ErrBusy
	}
	defer n.end()

	count, err := n.ensureCatalog(ctx)
	if err != nil {
		return err
	}
	ref, hasRef := n.reference()
	t := resolve(ref, hasRef, count)
	if t.cached == nil && !t.latest && (t.index < 1 || t.index > count) {
		n.logger.Error("resolved target out of range", "instance", n.id, "op", op, "index", t.index, "count", count)
		return fmt.Errorf("%s: index %d outside [1, %d]: %w", op, t.index, count, ErrIndexOutOfRange)
	}

	item, err := n.load(ctx, t)
	if err != nil {
		n.logger.Warn("fetch failed", "instance", n.id, "op", op, "class", catalog.Classify(err), "error", err)
		n.emit(Event{Kind: FetchError, Failure: failureFor(KindFetchFailed, err)})
		return fmt.Errorf("%s: %w: %w", op, ErrFetchFailed, err)
	}
	n.commit(item)
	n.logger.Debug("navigated", "instance", n.id, "op", op, "index", item.Index)
	return nil
}

func (n *Navigator) begin() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.inFlight {
		return false
	}
	n.inFlight = true
	return true
}

func (n *Navigator) end() {
	n.mu.Lock()
	n.inFlight = false
	n.mu.Unlock()
}

// ensureCatalog returns the known bound, loading it through the shared
// bootstrap on first use.
func (n *Navigator) ensureCatalog(ctx context.Context) (int, error) {
	if count, ok := n.catalog.Count(); ok {
		return count, nil
	}
	item, err := n.boot.Load(ctx)
	if err == nil {
		_, err = n.catalog.Observe(item.Index)
	}
	if err != nil {
		n.logger.Warn("catalog load failed", "instance", n.id, "class", catalog.Classify(err), "error", err)
		n.emit(Event{Kind: FetchError, Failure: failureFor(KindCatalogUnavailable, err)})
		return 0, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	n.rememberLatest(item)
	count, _ := n.catalog.Count()
	n.logger.Info("catalog ready", "instance", n.id, "count", count)
	n.emit(Event{Kind: CatalogReady, Count: count})
	return count, nil
}

func (n *Navigator) reference() (int, bool) {
	if item, ok := n.Current(); ok {
		return n.clamp(item.Index), true
	}
	if !n.pointerRead {
		n.pointerRead = true
		n.persisted, n.hasPersisted = n.pointer.Read()
		if n.hasPersisted {
			n.logger.Info("restored persisted pointer", "instance", n.id, "index", n.persisted)
		}
	}
	if !n.hasPersisted {
		return 0, false
	}
	return n.clamp(n.persisted), true
}

func (n *Navigator) load(ctx context.Context, t target) (catalog.Item, error) {
	switch {
	case t.cached != nil:
		return *t.cached, nil
	case t.latest:
		item, err := n.fetcher.FetchLatest(ctx)
		if err != nil {
			return catalog.Item{}, err
		}
		changed, err := n.catalog.Observe(item.Index)
		if err != nil {
			return catalog.Item{}, fmt.Errorf("latest item: %w", err)
		}
		if changed {
			count, _ := n.catalog.Count()
			n.emit(Event{Kind: CatalogReady, Count: count})
		}
		n.rememberLatest(item)
		return item, nil
	default:
		item, err := n.fetcher.FetchByIndex(ctx, t.index)
		if err != nil {
			return catalog.Item{}, err
		}
		if item.Index == 0 {
			item.Index = t.index
		}
		if item.Index != t.index {
			return catalog.Item{}, fmt.Errorf("item %d: catalog answered with item %d", t.index, item.Index)
		}
		return item, nil
	}
}

// commit publishes a fetched item: current, then pointer, then event, then
// the scheduler. It runs before inFlight clears so pointer writes keep
// navigation order.
func (n *Navigator) commit(item catalog.Item) {
	n.mu.Lock()
	n.current = &item
	n.mu.Unlock()

	if err := n.pointer.Write(item.Index); err != nil {
		n.logger.Warn("persist pointer failed", "instance", n.id, "index", item.Index, "error", err)
		n.emit(Event{Kind: FetchError, Failure: failureFor(KindPersistenceUnavailable, err)})
	}
	n.emit(Event{Kind: ItemUpdated, Item: item})
	if n.rearm != nil {
		n.rearm()
	}
}

func (n *Navigator) rememberLatest(item catalog.Item) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.latest == nil || item.Index >= n.latest.Index {
		n.latest = &item
	}
}

func (n *Navigator) draw(count int) int {
	if count < 1 {
		panic("instance: random draw over an empty catalog")
	}
	return n.rand(count) + 1
}

func (n *Navigator) emit(e Event) {
	e.Instance = n.id
	n.sink.Publish(e)
}

// clamp limits k to the known bound. Callers have already ensured the
// bound is known.
func (n *Navigator) clamp(k int) int {
	c, _ := n.catalog.Clamp(k)
	return c
}

package instance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/five82/panels/internal/catalog"
	"github.com/five82/panels/internal/clock"
	"github.com/five82/panels/internal/persist"
	"golang.org/x/sync/errgroup"
)

// Instance is the tuple the registry hands out for one id.
type Instance struct {
	ID        string
	Options   Options
	Navigator *Navigator
	Scheduler *Scheduler
	Pointer   *persist.Pointer
}

// Dispatch applies one command. Navigational commands block until their
// fetch completes; SUSPEND and RESUME return immediately.
func (in *Instance) Dispatch(ctx context.Context, cmd Command) error {
	switch cmd.Kind {
	case GotoFirst:
		return in.Navigator.First(ctx)
	case GotoLatest:
		return in.Navigator.Latest(ctx)
	case GotoPrevious:
		return in.Navigator.Previous(ctx)
	case GotoNext:
		return in.Navigator.Next(ctx)
	case GotoRandom:
		return in.Navigator.Random(ctx)
	case GotoIndex:
		return in.Navigator.Goto(ctx, cmd.Index)
	case Suspend:
		in.Scheduler.Suspend()
		return nil
	case Resume:
		in.Scheduler.Resume()
		return nil
	default:
		return fmt.Errorf("dispatch %s: unsupported command", cmd)
	}
}

// Start runs start-up resolution for the instance. When it fails the update
// timer is armed anyway so the next tick retries.
func (in *Instance) Start(ctx context.Context) error {
	err := in.Navigator.Start(ctx)
	if err != nil && !errors.Is(err, ErrBusy) {
		in.Scheduler.Arm()
	}
	return err
}

// RegistryConfig holds what every instance shares.
type RegistryConfig struct {
	Fetcher   catalog.Fetcher
	Bootstrap *catalog.Bootstrap // built from Fetcher when nil
	Clock     clock.Clock
	Sink      Sink
	Stores    map[PersistenceMode]persist.Store
	Logger    *slog.Logger
	Rand      func(n int) int

	// Context bounds timer-driven navigations. Defaults to Background.
	Context context.Context
}

// Registry maps instance ids to their navigator, scheduler and pointer.
// Instances live for the lifetime of the registry.
type Registry struct {
	cfg RegistryConfig

	mu        sync.Mutex
	instances map[string]*Instance
	order     []string
}

// NewRegistry builds an empty registry. Fetcher is required.
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.Bootstrap == nil {
		cfg.Bootstrap = catalog.NewBootstrap(cfg.Fetcher)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Sink == nil {
		cfg.Sink = discardSink{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	return &Registry{cfg: cfg, instances: make(map[string]*Instance)}
}

// GetOrCreate returns the instance registered under id, creating it from
// opts on first use. Later calls ignore opts.
func (r *Registry) GetOrCreate(id string, opts Options) (*Instance, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("instance id must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if in, ok := r.instances[id]; ok {
		return in, nil
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("instance %s: %w", id, err)
	}
	if opts.Persistence != PersistNone && opts.Persistence != "" {
		if err := persist.CheckKey(persistenceKey(id, opts)); err != nil {
			return nil, fmt.Errorf("instance %s: %w", id, err)
		}
	}
	in := r.build(id, opts)
	r.instances[id] = in
	r.order = append(r.order, id)
	r.cfg.Logger.Info("instance registered",
		"instance", id,
		"initial", opts.Initial.String(),
		"sequence", string(opts.Sequence),
		"firing", opts.Firing.String(),
		"interval", opts.UpdateInterval.String(),
		"persistence", string(opts.Persistence),
		"key", in.Pointer.StorageKey(),
	)
	return in, nil
}

func (r *Registry) build(id string, opts Options) *Instance {
	logger := r.cfg.Logger

	key := persistenceKey(id, opts)
	var store persist.Store
	if opts.Persistence != PersistNone && opts.Persistence != "" {
		store = r.cfg.Stores[opts.Persistence]
		if store == nil {
			logger.Warn("persistence backend not configured; pointer disabled", "instance", id, "mode", string(opts.Persistence))
		}
	}
	pointer := persist.NewPointer(store, key, logger)

	var nav *Navigator
	sched := NewScheduler(SchedulerConfig{
		Clock:    r.cfg.Clock,
		Interval: opts.UpdateInterval,
		Firing:   opts.Firing,
		Advance:  func() error { return nav.AutoAdvance(r.cfg.Context) },
		Logger:   logger,
		ID:       id,
	})
	nav = NewNavigator(NavigatorConfig{
		ID:        id,
		Fetcher:   r.cfg.Fetcher,
		Bootstrap: r.cfg.Bootstrap,
		Pointer:   pointer,
		Sink:      r.cfg.Sink,
		Logger:    logger,
		Initial:   opts.Initial,
		Sequence:  opts.Sequence,
		Rand:      r.cfg.Rand,
		Rearm:     sched.Arm,
	})
	return &Instance{ID: id, Options: opts, Navigator: nav, Scheduler: sched, Pointer: pointer}
}

// persistenceKey is the configured key, or the instance id when none is set.
func persistenceKey(id string, opts Options) string {
	if strings.TrimSpace(opts.PersistenceKey) == "" {
		return id
	}
	return opts.PersistenceKey
}

// Get returns a registered instance.
func (r *Registry) Get(id string) (*Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.instances[id]
	return in, ok
}

// IDs returns registered ids in creation order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Dispatch routes cmd to the instance registered under id.
func (r *Registry) Dispatch(ctx context.Context, id string, cmd Command) error {
	in, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("dispatch %s to %q: %w", cmd, id, ErrUnknownInstance)
	}
	return in.Dispatch(ctx, cmd)
}

// Broadcast applies cmd to every instance in creation order and joins the
// errors.
func (r *Registry) Broadcast(ctx context.Context, cmd Command) error {
	var errs []error
	for _, id := range r.IDs() {
		if err := r.Dispatch(ctx, id, cmd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StartAll runs start-up resolution for every instance concurrently. The
// first catalog load is shared, so n instances issue one latest fetch.
func (r *Registry) StartAll(ctx context.Context) error {
	ids := r.IDs()
	errs := make([]error, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		in, _ := r.Get(id)
		g.Go(func() error {
			if err := in.Start(ctx); err != nil {
				errs[i] = fmt.Errorf("start %s: %w", id, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Status summarizes an instance for display.
type Status struct {
	Visibility Visibility
	Phase      Phase
	Busy       bool
	Sequence   SequencePolicy
	Firing     FiringPolicy
	Interval   time.Duration
}

// Status reports the scheduler and navigation state of id.
func (r *Registry) Status(id string) (Status, bool) {
	in, ok := r.Get(id)
	if !ok {
		return Status{}, false
	}
	return Status{
		Visibility: in.Scheduler.Visibility(),
		Phase:      in.Scheduler.Phase(),
		Busy:       in.Navigator.Busy(),
		Sequence:   in.Options.Sequence,
		Firing:     in.Scheduler.Firing(),
		Interval:   in.Scheduler.Interval(),
	}, true
}

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/five82/panels/internal/catalog"
	"github.com/five82/panels/internal/config"
	"github.com/five82/panels/internal/instance"
	"github.com/five82/panels/internal/logging"
	"github.com/five82/panels/internal/persist"
	"github.com/five82/panels/internal/prefs"
	"github.com/five82/panels/internal/state"
	"github.com/five82/panels/internal/ui"
)

// Options configure the panels viewer.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/panels/prefs.toml
	Instance   string // focused instance; empty uses the saved preference
}

// Runtime is a wired engine: catalog client, persistence backings and the
// instance registry built from one configuration.
type Runtime struct {
	Config   config.Config
	Logger   *slog.Logger
	Client   *catalog.Client
	Registry *instance.Registry

	closers []io.Closer
}

// Build opens the stores the configured instances need and registers every
// instance. A store that fails to open is logged and left out, which
// disables persistence for the instances that asked for it.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, sink instance.Sink) (*Runtime, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	client, err := NewClient(cfg.Catalog)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Config: cfg, Logger: logger, Client: client}
	stores := rt.openStores(cfg)

	rt.Registry = instance.NewRegistry(instance.RegistryConfig{
		Fetcher: client,
		Sink:    sink,
		Stores:  stores,
		Logger:  logger,
		Context: ctx,
	})
	for _, ic := range cfg.Instances {
		if _, err := rt.Registry.GetOrCreate(ic.ID, ic.Options); err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("register instance %s: %w", ic.ID, err)
		}
	}
	return rt, nil
}

// NewClient builds the catalog client described by cfg.
func NewClient(cfg config.CatalogConfig) (*catalog.Client, error) {
	client, err := catalog.NewClient(cfg.BaseURL,
		catalog.WithTimeout(cfg.Timeout),
		catalog.WithUserAgent(cfg.UserAgent),
	)
	if err != nil {
		return nil, fmt.Errorf("init catalog client: %w", err)
	}
	return client, nil
}

func (rt *Runtime) openStores(cfg config.Config) map[instance.PersistenceMode]persist.Store {
	stores := make(map[instance.PersistenceMode]persist.Store)
	for _, mode := range usedModes(cfg.Instances) {
		switch mode {
		case instance.PersistRemote:
			fs, err := persist.NewFileStore(cfg.Storage.Dir)
			if err != nil {
				rt.Logger.Warn("file store unavailable", "dir", cfg.Storage.Dir, "error", err)
				continue
			}
			stores[mode] = fs
		case instance.PersistLocal:
			bs, err := persist.OpenBoltStore(cfg.Storage.DB)
			if err != nil {
				rt.Logger.Warn("bolt store unavailable", "path", cfg.Storage.DB, "error", err)
				continue
			}
			stores[mode] = bs
			rt.closers = append(rt.closers, bs)
		}
	}
	return stores
}

func usedModes(instances []config.InstanceConfig) []instance.PersistenceMode {
	var modes []instance.PersistenceMode
	seen := make(map[instance.PersistenceMode]bool)
	for _, ic := range instances {
		mode := ic.Options.Persistence
		if mode == instance.PersistNone || seen[mode] {
			continue
		}
		seen[mode] = true
		modes = append(modes, mode)
	}
	return modes
}

// Close releases the stores opened by Build.
func (rt *Runtime) Close() error {
	var errs []error
	for _, c := range rt.closers {
		errs = append(errs, c.Close())
	}
	rt.closers = nil
	return errors.Join(errs...)
}

// Run boots the panels TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	logger, closeLog := openLog(cfg.Logging)
	defer closeLog()

	store := &state.Store{}
	rt, err := Build(ctx, cfg, logger, store)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("close stores failed", "error", err)
		}
	}()

	ids := rt.Registry.IDs()
	for _, id := range ids {
		store.Track(id)
	}
	logger.Info("panels started", "config", cfg.Path, "catalog", rt.Client.BaseURL(), "instances", len(ids))

	focus := opts.Instance
	if focus == "" {
		focus = userPrefs.Instance
	}

	err = ui.Run(ui.Options{
		Context:   ctx,
		Engine:    rt.Registry,
		Store:     store,
		Display:   cfg.Display,
		LogFile:   cfg.Logging.File,
		ThemeName: userPrefs.Theme,
		Instance:  focus,
		PrefsPath: opts.PrefsPath,
		Logger:    logger,
	})
	for _, id := range ids {
		if in, ok := rt.Registry.Get(id); ok {
			in.Scheduler.Stop()
		}
	}
	logger.Info("panels stopped")
	return err
}

// openLog sets up the file logger. Failures fall back to a discard logger
// so log output never lands on the terminal the TUI owns.
func openLog(cfg config.LoggingConfig) (*slog.Logger, func()) {
	logger, closer, err := logging.Setup(cfg.File, cfg.Level)
	if err != nil {
		return logging.Discard(), func() {}
	}
	return logger, func() { _ = closer.Close() }
}

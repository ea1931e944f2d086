package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/five82/panels/internal/catalog"
	"github.com/five82/panels/internal/config"
	"github.com/five82/panels/internal/instance"
)

// StepOptions configure a one-shot navigation.
type StepOptions struct {
	ConfigPath string
	Instance   string            // empty selects the first configured instance
	Command    *instance.Command // nil only resolves the start-up position
}

// StepResult is the outcome of Step.
type StepResult struct {
	Instance string
	Item     catalog.Item
	Count    int
	Warnings []string // non-fatal failures, such as a pointer that was not saved
}

// Step resolves the start-up position of one instance, applies an optional
// command and returns the item that ends up current. The pointer is written
// like in the viewer, so repeated runs (from cron, say) walk the catalog.
// Update timers are disabled; the process exits right after.
//
// An instance id that is not configured runs with default options and file
// persistence, keyed by a name-based UUID of the catalog URL and the id so
// pointers for different catalogs never collide.
func Step(ctx context.Context, opts StepOptions) (StepResult, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return StepResult{}, fmt.Errorf("load config: %w", err)
	}
	logger, closeLog := openLog(cfg.Logging)
	defer closeLog()

	ic, err := selectInstance(cfg, opts.Instance)
	if err != nil {
		return StepResult{}, err
	}
	ic.Options.UpdateInterval = 0
	cfg.Instances = []config.InstanceConfig{ic}

	var warnings []string
	sink := instance.SinkFunc(func(e instance.Event) {
		if e.Kind == instance.FetchError && e.Failure != nil && e.Failure.Kind == instance.KindPersistenceUnavailable {
			warnings = append(warnings, "pointer not saved: "+e.Failure.Detail)
		}
	})

	rt, err := Build(ctx, cfg, logger, sink)
	if err != nil {
		return StepResult{}, err
	}
	defer rt.Close()

	in, ok := rt.Registry.Get(ic.ID)
	if !ok {
		return StepResult{}, fmt.Errorf("instance %s: %w", ic.ID, instance.ErrUnknownInstance)
	}
	if err := in.Start(ctx); err != nil {
		return StepResult{}, fmt.Errorf("start %s: %w", ic.ID, err)
	}
	if opts.Command != nil {
		if err := in.Dispatch(ctx, *opts.Command); err != nil {
			return StepResult{}, fmt.Errorf("%s %s: %w", ic.ID, opts.Command, err)
		}
	}

	item, _ := in.Navigator.Current()
	count, _ := in.Navigator.Count()
	logger.Info("step finished", "instance", ic.ID, "index", item.Index, "count", count)
	return StepResult{Instance: ic.ID, Item: item, Count: count, Warnings: warnings}, nil
}

func selectInstance(cfg config.Config, id string) (config.InstanceConfig, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		if len(cfg.Instances) == 0 {
			return config.InstanceConfig{}, fmt.Errorf("no instances configured")
		}
		return cfg.Instances[0], nil
	}
	for _, ic := range cfg.Instances {
		if ic.ID == id {
			return ic, nil
		}
	}

	opts := instance.DefaultOptions()
	opts.Persistence = instance.PersistRemote
	opts.PersistenceKey = AdHocKey(cfg.Catalog.BaseURL, id)
	return config.InstanceConfig{ID: id, Options: opts}, nil
}

// AdHocKey is the persistence key for an instance that only exists on the
// command line.
func AdHocKey(baseURL, id string) string {
	name := strings.TrimRight(strings.TrimSpace(baseURL), "/") + "#" + id
	return "step-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// Fetch asks the catalog for one item directly, bypassing the engine. which
// is "latest" (or empty) or an item number.
func Fetch(ctx context.Context, configPath, which string) (catalog.Item, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return catalog.Item{}, fmt.Errorf("load config: %w", err)
	}
	client, err := NewClient(cfg.Catalog)
	if err != nil {
		return catalog.Item{}, err
	}

	which = strings.ToLower(strings.TrimSpace(which))
	if which == "" || which == "latest" {
		return client.FetchLatest(ctx)
	}
	n, err := strconv.Atoi(which)
	if err != nil {
		return catalog.Item{}, fmt.Errorf("fetch %q: want latest or an item number", which)
	}
	return client.FetchByIndex(ctx, n)
}

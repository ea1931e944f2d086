package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/five82/panels/internal/instance"
)

// Config is the resolved panels configuration.
type Config struct {
	Path      string // config file consulted; it may not exist
	Catalog   CatalogConfig
	Logging   LoggingConfig
	Storage   StorageConfig
	Display   DisplayConfig
	Instances []InstanceConfig
}

// CatalogConfig locates the catalog service.
type CatalogConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// LoggingConfig controls the JSON log file.
type LoggingConfig struct {
	File  string
	Level string
}

// StorageConfig locates the persistence backings.
type StorageConfig struct {
	Dir string // file store root, used by persistence = "remote"
	DB  string // bbolt file, used by persistence = "local"
}

// DisplayConfig selects which header parts are shown.
type DisplayConfig struct {
	Header      string
	ShowTitle   bool
	ShowDate    bool
	ShowAltText bool
	ShowNum     bool
}

// InstanceConfig is one [[instances]] table.
type InstanceConfig struct {
	ID      string
	Options instance.Options
}

const (
	envPrefix         = "PANELS"
	envConfig         = "PANELS_CONFIG"
	defaultConfigPath = "~/.config/panels/config.toml"
	defaultLogFile    = "~/.local/share/panels/panels.log"
	defaultStoreDir   = "~/.local/share/panels/store"
	defaultDBPath     = "~/.local/share/panels/panels.db"
	defaultBaseURL    = "https://xkcd.com"
	defaultTimeout    = "10s"
	defaultHeader     = "xkcd"
	defaultInstanceID = "main"
)

type rawInstance struct {
	ID               string `mapstructure:"id"`
	InitialPosition  any    `mapstructure:"initial_position"`
	Sequence         string `mapstructure:"sequence"`
	VisibilityFiring any    `mapstructure:"visibility_firing"`
	UpdateInterval   any    `mapstructure:"update_interval"`
	Persistence      string `mapstructure:"persistence"`
	PersistenceKey   string `mapstructure:"persistence_key"`
}

// Load reads the config file at path. An empty path falls back to
// $PANELS_CONFIG, then ~/.config/panels/config.toml. A missing file yields
// defaults; a malformed one is an error. Scalar keys can be overridden from
// the environment, e.g. PANELS_CATALOG_BASE_URL.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetDefault("catalog.base_url", defaultBaseURL)
	v.SetDefault("catalog.timeout", defaultTimeout)
	v.SetDefault("catalog.user_agent", "")
	v.SetDefault("logging.file", defaultLogFile)
	v.SetDefault("logging.level", "info")
	v.SetDefault("storage.dir", defaultStoreDir)
	v.SetDefault("storage.db", defaultDBPath)
	v.SetDefault("display.header", defaultHeader)
	v.SetDefault("display.show_title", true)
	v.SetDefault("display.show_date", true)
	v.SetDefault("display.show_alt_text", true)
	v.SetDefault("display.show_num", true)

	v.SetConfigType("toml")
	v.SetConfigFile(resolved)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if _, err := os.Stat(resolved); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	cfg := Config{
		Path: resolved,
		Catalog: CatalogConfig{
			BaseURL:   strings.TrimSpace(v.GetString("catalog.base_url")),
			UserAgent: strings.TrimSpace(v.GetString("catalog.user_agent")),
		},
		Logging: LoggingConfig{
			File:  mustExpand(orDefault(v.GetString("logging.file"), defaultLogFile)),
			Level: strings.ToLower(strings.TrimSpace(v.GetString("logging.level"))),
		},
		Storage: StorageConfig{
			Dir: mustExpand(orDefault(v.GetString("storage.dir"), defaultStoreDir)),
			DB:  mustExpand(orDefault(v.GetString("storage.db"), defaultDBPath)),
		},
		Display: DisplayConfig{
			Header:      strings.TrimSpace(v.GetString("display.header")),
			ShowTitle:   v.GetBool("display.show_title"),
			ShowDate:    v.GetBool("display.show_date"),
			ShowAltText: v.GetBool("display.show_alt_text"),
			ShowNum:     v.GetBool("display.show_num"),
		},
	}
	if cfg.Catalog.BaseURL == "" {
		cfg.Catalog.BaseURL = defaultBaseURL
	}

	timeout := orDefault(v.GetString("catalog.timeout"), defaultTimeout)
	cfg.Catalog.Timeout, err = time.ParseDuration(timeout)
	if err != nil || cfg.Catalog.Timeout <= 0 {
		return Config{}, fmt.Errorf("catalog.timeout %q: want a positive duration", timeout)
	}

	var raw []rawInstance
	if err := v.UnmarshalKey("instances", &raw); err != nil {
		return Config{}, fmt.Errorf("parse instances: %w", err)
	}
	cfg.Instances, err = buildInstances(raw)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func buildInstances(raw []rawInstance) ([]InstanceConfig, error) {
	if len(raw) == 0 {
		return []InstanceConfig{{ID: defaultInstanceID, Options: instance.DefaultOptions()}}, nil
	}

	seen := make(map[string]bool, len(raw))
	out := make([]InstanceConfig, 0, len(raw))
	for i, r := range raw {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			if len(raw) > 1 {
				return nil, fmt.Errorf("instances[%d]: id is required when more than one instance is configured", i)
			}
			id = defaultInstanceID
		}
		if seen[id] {
			return nil, fmt.Errorf("instances[%d]: duplicate id %q", i, id)
		}
		seen[id] = true

		opts, err := instanceOptions(r)
		if err != nil {
			return nil, fmt.Errorf("instance %s: %w", id, err)
		}
		out = append(out, InstanceConfig{ID: id, Options: opts})
	}
	return out, nil
}

func instanceOptions(r rawInstance) (instance.Options, error) {
	opts := instance.DefaultOptions()
	var err error

	if s, ok := scalar(r.InitialPosition); ok {
		if opts.Initial, err = instance.ParseInitialPosition(s); err != nil {
			return opts, err
		}
	}
	if s := strings.TrimSpace(r.Sequence); s != "" {
		if opts.Sequence, err = instance.ParseSequencePolicy(s); err != nil {
			return opts, err
		}
	}
	if s, ok := scalar(r.VisibilityFiring); ok {
		if opts.Firing, err = instance.ParseFiringPolicy(s); err != nil {
			return opts, err
		}
	}
	if s, ok := scalar(r.UpdateInterval); ok {
		if opts.UpdateInterval, err = instance.ParseUpdateInterval(s); err != nil {
			return opts, err
		}
	}
	if opts.Persistence, err = instance.ParsePersistenceMode(r.Persistence); err != nil {
		return opts, err
	}
	opts.PersistenceKey = strings.TrimSpace(r.PersistenceKey)
	return opts, nil
}

// scalar renders a TOML string, integer or boolean as text. ok is false when
// the key was absent.
func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		if strings.TrimSpace(x) == "" {
			return "", false
		}
		return x, true
	default:
		return fmt.Sprint(x), true
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) != "" {
		return expandPath(path)
	}
	if env := strings.TrimSpace(os.Getenv(envConfig)); env != "" {
		return expandPath(env)
	}
	return expandPath(defaultConfigPath)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

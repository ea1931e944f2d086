package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/five82/panels/internal/catalog"
	"github.com/five82/panels/internal/config"
	"github.com/five82/panels/internal/instance"
	"github.com/five82/panels/internal/logging"
	"github.com/five82/panels/internal/persist"
)

// catalogServer serves items 1..count, latest at /info.0.json.
func catalogServer(t *testing.T, count int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		n := count
		if r.URL.Path != "/info.0.json" {
			num, ok := strings.CutSuffix(strings.TrimPrefix(r.URL.Path, "/"), "/info.0.json")
			parsed, err := strconv.Atoi(num)
			if !ok || err != nil || parsed < 1 || parsed > count {
				http.NotFound(w, r)
				return
			}
			n = parsed
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(catalog.Item{Index: n, Title: fmt.Sprintf("Item %d", n), Year: "2024", Month: "1", Day: "2"})
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func writeConfig(t *testing.T, baseURL, instances string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	body := fmt.Sprintf(`
[catalog]
base_url = %q
timeout = "2s"

[logging]
file = %q
level = "debug"

[storage]
dir = %q
db = %q
%s`, baseURL, filepath.Join(dir, "panels.log"), filepath.Join(dir, "store"), filepath.Join(dir, "panels.db"), instances)
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func next() *instance.Command {
	return &instance.Command{Kind: instance.GotoNext}
}

func TestStep_DefaultInstanceStartsAtLatest(t *testing.T) {
	server, _ := catalogServer(t, 100)
	path := writeConfig(t, server.URL, "")

	res, err := Step(context.Background(), StepOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("Step returned error: %v", err)
	}
	if res.Instance != "main" || res.Item.Index != 100 || res.Count != 100 {
		t.Fatalf("Step = %+v, want main at 100 of 100", res)
	}
}

func TestStep_PersistedPointerAdvances(t *testing.T) {
	for _, mode := range []string{"remote", "local"} {
		t.Run(mode, func(t *testing.T) {
			server, _ := catalogServer(t, 100)
			path := writeConfig(t, server.URL, fmt.Sprintf(`
[[instances]]
id = "hall"
persistence = %q
`, mode))
			ctx := context.Background()

			first, err := Step(ctx, StepOptions{ConfigPath: path, Command: next()})
			if err != nil {
				t.Fatalf("first Step returned error: %v", err)
			}
			if first.Item.Index != 1 {
				t.Fatalf("first Step index = %d, want 1 (next wraps from latest)", first.Item.Index)
			}

			second, err := Step(ctx, StepOptions{ConfigPath: path, Command: next()})
			if err != nil {
				t.Fatalf("second Step returned error: %v", err)
			}
			if second.Item.Index != 2 {
				t.Fatalf("second Step index = %d, want 2 (continues from the pointer)", second.Item.Index)
			}
		})
	}
}

func TestStep_AdHocInstanceUsesFileStore(t *testing.T) {
	server, _ := catalogServer(t, 50)
	path := writeConfig(t, server.URL, "")
	ctx := context.Background()

	goto7 := instance.Goto(7)
	if _, err := Step(ctx, StepOptions{ConfigPath: path, Instance: "kiosk", Command: &goto7}); err != nil {
		t.Fatalf("Step returned error: %v", err)
	}
	res, err := Step(ctx, StepOptions{ConfigPath: path, Instance: "kiosk"})
	if err != nil {
		t.Fatalf("Step returned error: %v", err)
	}
	if res.Instance != "kiosk" || res.Item.Index != 7 {
		t.Fatalf("Step = %+v, want kiosk restored at 7", res)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	fs, err := persist.NewFileStore(cfg.Storage.Dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, ok, err := fs.Get(persist.Key(AdHocKey(cfg.Catalog.BaseURL, "kiosk"))); err != nil || !ok {
		t.Fatalf("ad hoc pointer missing: ok=%v err=%v", ok, err)
	}
}

func TestStep_CatalogDown(t *testing.T) {
	server, _ := catalogServer(t, 10)
	path := writeConfig(t, server.URL, "")
	server.Close()

	_, err := Step(context.Background(), StepOptions{ConfigPath: path})
	if err == nil {
		t.Fatal("Step returned nil error with the catalog down")
	}
}

func TestAdHocKey(t *testing.T) {
	a := AdHocKey("https://xkcd.com/", "kiosk")
	if a != AdHocKey("https://xkcd.com", "kiosk") {
		t.Fatal("AdHocKey should ignore a trailing slash")
	}
	if a == AdHocKey("https://mirror.test", "kiosk") || a == AdHocKey("https://xkcd.com", "hall") {
		t.Fatal("AdHocKey should depend on both catalog and id")
	}
	if !strings.HasPrefix(a, "step-") {
		t.Fatalf("AdHocKey = %q, want step- prefix", a)
	}
}

func TestFetch(t *testing.T) {
	server, _ := catalogServer(t, 100)
	path := writeConfig(t, server.URL, "")
	ctx := context.Background()

	latest, err := Fetch(ctx, path, "")
	if err != nil || latest.Index != 100 {
		t.Fatalf("Fetch latest = %d, %v; want 100", latest.Index, err)
	}
	item, err := Fetch(ctx, path, "42")
	if err != nil || item.Index != 42 {
		t.Fatalf("Fetch 42 = %d, %v; want 42", item.Index, err)
	}
	if _, err := Fetch(ctx, path, "soon"); err == nil {
		t.Fatal("Fetch soon returned nil error")
	}
	if _, err := Fetch(ctx, path, "101"); err == nil {
		t.Fatal("Fetch past the end returned nil error")
	}
}

func TestBuild_SharesFirstLoadAndSurvivesBadStore(t *testing.T) {
	server, requests := catalogServer(t, 30)
	path := writeConfig(t, server.URL, `
[[instances]]
id = "a"
persistence = "local"

[[instances]]
id = "b"
persistence = "local"
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	// A regular file where the database directory should be.
	if err := os.WriteFile(cfg.Storage.Dir, []byte("x"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg.Storage.DB = filepath.Join(cfg.Storage.Dir, "panels.db")

	rt, err := Build(context.Background(), cfg, logging.Discard(), nil)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	defer rt.Close()

	if err := rt.Registry.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll returned error: %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Fatalf("catalog requests = %d, want one shared latest fetch", got)
	}
	for _, id := range []string{"a", "b"} {
		in, _ := rt.Registry.Get(id)
		if in.Pointer.Enabled() {
			t.Fatalf("%s pointer enabled without a usable store", id)
		}
		in.Scheduler.Stop()
	}
}

func TestUsedModes(t *testing.T) {
	ics := []config.InstanceConfig{
		{ID: "a", Options: instance.Options{Persistence: instance.PersistLocal}},
		{ID: "b", Options: instance.Options{Persistence: instance.PersistNone}},
		{ID: "c", Options: instance.Options{Persistence: instance.PersistLocal}},
		{ID: "d", Options: instance.Options{Persistence: instance.PersistRemote}},
	}
	got := usedModes(ics)
	if len(got) != 2 || got[0] != instance.PersistLocal || got[1] != instance.PersistRemote {
		t.Fatalf("usedModes = %v, want [local remote]", got)
	}
}

package ui

import (
	"testing"
	"time"

	"github.com/five82/panels/internal/catalog"
	"github.com/five82/panels/internal/config"
	"github.com/five82/panels/internal/instance"
)

func allParts() config.DisplayConfig {
	return config.DisplayConfig{Header: "xkcd", ShowTitle: true, ShowDate: true, ShowAltText: true, ShowNum: true}
}

func TestHeader(t *testing.T) {
	python := catalog.Item{Index: 353, Title: "Python", Year: "2007", Month: "12", Day: "5"}

	tests := []struct {
		name   string
		mutate func(*config.DisplayConfig)
		item   catalog.Item
		want   string
	}{
		{"every part", nil, python, "xkcd 353 - Python - 2007-12-05"},
		{"no number", func(d *config.DisplayConfig) { d.ShowNum = false }, python, "xkcd - Python - 2007-12-05"},
		{"no date", func(d *config.DisplayConfig) { d.ShowDate = false }, python, "xkcd 353 - Python"},
		{"titles hidden", func(d *config.DisplayConfig) { d.ShowTitle = false }, python, ""},
		{"empty header", func(d *config.DisplayConfig) { d.Header = "" }, python, "353 - Python - 2007-12-05"},
		{"safe title fallback", nil, catalog.Item{Index: 7, SafeTitle: "Girl sleeping"}, "xkcd 7 - Girl sleeping"},
		{"no date parts", nil, catalog.Item{Index: 1, Title: "Barrel"}, "xkcd 1 - Barrel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := allParts()
			if tt.mutate != nil {
				tt.mutate(&d)
			}
			if got := Header(d, tt.item); got != tt.want {
				t.Fatalf("Header() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPhaseText(t *testing.T) {
	tests := []struct {
		st   instance.Status
		want string
	}{
		{instance.Status{Phase: instance.PhaseArmed, Interval: time.Hour}, "every 1h"},
		{instance.Status{Phase: instance.PhaseArmed, Interval: 90 * time.Second}, "every 1m30s"},
		{instance.Status{Phase: instance.PhaseArmed, Interval: 10 * time.Second}, "every 10s"},
		{instance.Status{Phase: instance.PhaseDeferred, Interval: time.Minute}, "update pending"},
		{instance.Status{Phase: instance.PhaseIdle, Interval: time.Minute}, "paused"},
		{instance.Status{Phase: instance.PhaseIdle}, "manual"},
	}
	for _, tt := range tests {
		if got := phaseText(tt.st); got != tt.want {
			t.Fatalf("phaseText(%+v) = %q, want %q", tt.st, got, tt.want)
		}
	}
}

func TestFailureText(t *testing.T) {
	f := &instance.Failure{Kind: instance.KindFetchFailed, Class: "http", Detail: "status 503"}
	if got := failureText(f); got != "fetch_failed (http): status 503" {
		t.Fatalf("failureText = %q", got)
	}
	if got := failureText(nil); got != "" {
		t.Fatalf("failureText(nil) = %q, want empty", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  abcdefgh  ", 6); got != "abc..." {
		t.Fatalf("truncate = %q, want abc...", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Fatalf("truncate short = %q, want abc", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Fatalf("truncate tiny limit = %q, want ab", got)
	}
}

package instance

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PositionKind selects how an instance picks its first item when nothing
// was persisted.
type PositionKind int

const (
	PositionLatest PositionKind = iota
	PositionFirst
	PositionRandom
	PositionIndex
)

// InitialPosition is the configured start-up target.
type InitialPosition struct {
	Kind  PositionKind
	Index int // used when Kind == PositionIndex
}

func (p InitialPosition) String() string {
	switch p.Kind {
	case PositionFirst:
		return "first"
	case PositionRandom:
		return "random"
	case PositionIndex:
		return strconv.Itoa(p.Index)
	default:
		return "latest"
	}
}

// ParseInitialPosition accepts first, latest, random or a positive index.
// An empty string means latest.
func ParseInitialPosition(s string) (InitialPosition, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "latest":
		return InitialPosition{Kind: PositionLatest}, nil
	case "first":
		return InitialPosition{Kind: PositionFirst}, nil
	case "random":
		return InitialPosition{Kind: PositionRandom}, nil
	default:
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return InitialPosition{}, fmt.Errorf("initial position %q: want first, latest, random or a positive index", s)
		}
		return InitialPosition{Kind: PositionIndex, Index: n}, nil
	}
}

// SequencePolicy governs the direction of automatic advances.
type SequencePolicy string

const (
	SequenceRandom  SequencePolicy = "random"
	SequenceReverse SequencePolicy = "reverse"
	SequenceLatest  SequencePolicy = "latest"
	SequenceDefault SequencePolicy = "default"
)

// ParseSequencePolicy accepts random, reverse, latest or default. An empty
// string means default.
func ParseSequencePolicy(s string) (SequencePolicy, error) {
	switch v := SequencePolicy(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return SequenceDefault, nil
	case SequenceRandom, SequenceReverse, SequenceLatest, SequenceDefault:
		return v, nil
	default:
		return "", fmt.Errorf("sequence %q: want random, reverse, latest or default", s)
	}
}

// FiringPolicy decides whether a timer tick may advance given visibility.
type FiringPolicy int

const (
	FireAlways FiringPolicy = iota
	FireOnlyHidden
	FireOnlyVisible
)

func (p FiringPolicy) String() string {
	switch p {
	case FireOnlyHidden:
		return "onlyHidden"
	case FireOnlyVisible:
		return "onlyVisible"
	default:
		return "always"
	}
}

// Permits reports whether a tick may fire while in visibility v.
func (p FiringPolicy) Permits(v Visibility) bool {
	switch p {
	case FireOnlyHidden:
		return v == Hidden
	case FireOnlyVisible:
		return v == Visible
	default:
		return true
	}
}

// ParseFiringPolicy accepts always, onlyHidden and onlyVisible in any case,
// with or without separators. The legacy updateOnSuspension values null,
// true and false map to always, onlyHidden and onlyVisible.
func ParseFiringPolicy(s string) (FiringPolicy, error) {
	v := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case "", "always", "null":
		return FireAlways, nil
	case "onlyhidden", "hidden", "true":
		return FireOnlyHidden, nil
	case "onlyvisible", "visible", "false":
		return FireOnlyVisible, nil
	default:
		return 0, fmt.Errorf("visibility firing %q: want always, onlyHidden or onlyVisible", s)
	}
}

// PersistenceMode selects where the last-viewed index is stored.
type PersistenceMode string

const (
	PersistNone   PersistenceMode = "none"
	PersistLocal  PersistenceMode = "local"
	PersistRemote PersistenceMode = "remote"
)

// ParsePersistenceMode accepts none, local or remote. client and electron
// are read as local, server as remote.
func ParsePersistenceMode(s string) (PersistenceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "off", "false":
		return PersistNone, nil
	case "local", "client", "electron":
		return PersistLocal, nil
	case "remote", "server":
		return PersistRemote, nil
	default:
		return "", fmt.Errorf("persistence %q: want none, local or remote", s)
	}
}

// ParseUpdateInterval accepts a Go duration ("90s", "1h"), a bare integer of
// milliseconds, or disabled/off/0. A zero result disables automatic updates.
func ParseUpdateInterval(s string) (time.Duration, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "disabled", "off", "none", "null", "0":
		return 0, nil
	case "":
		return DefaultUpdateInterval, nil
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("update interval %q: must not be negative", s)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("update interval %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("update interval %q: must not be negative", s)
	}
	return d, nil
}

// DefaultUpdateInterval is the advance interval when none is configured.
const DefaultUpdateInterval = time.Hour

// Options configure one instance at creation.
type Options struct {
	Initial        InitialPosition
	Sequence       SequencePolicy
	Firing         FiringPolicy
	UpdateInterval time.Duration // zero disables automatic advances
	Persistence    PersistenceMode
	PersistenceKey string // empty uses the instance id
}

// DefaultOptions returns the built-in defaults.
func DefaultOptions() Options {
	return Options{
		Initial:        InitialPosition{Kind: PositionLatest},
		Sequence:       SequenceRandom,
		Firing:         FireAlways,
		UpdateInterval: DefaultUpdateInterval,
		Persistence:    PersistNone,
	}
}

// Validate checks that every field holds a recognized value.
func (o Options) Validate() error {
	if o.Initial.Kind == PositionIndex && o.Initial.Index < 1 {
		return fmt.Errorf("initial position index %d: must be positive", o.Initial.Index)
	}
	if _, err := ParseSequencePolicy(string(o.Sequence)); err != nil {
		return err
	}
	if o.Firing < FireAlways || o.Firing > FireOnlyVisible {
		return fmt.Errorf("visibility firing %d: unknown policy", o.Firing)
	}
	if o.UpdateInterval < 0 {
		return fmt.Errorf("update interval %v: must not be negative", o.UpdateInterval)
	}
	if _, err := ParsePersistenceMode(string(o.Persistence)); err != nil {
		return err
	}
	return nil
}

package persist

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Pointer reads and writes one instance's last-viewed index. A Pointer with
// a nil Store is disabled: Read reports absent and Write does nothing.
type Pointer struct {
	store  Store
	key    string
	logger *slog.Logger
}

type pointerDoc struct {
	ID json.Number `json:"id"`
}

// NewPointer binds a pointer to persistenceKey inside store. store may be
// nil to disable persistence.
func NewPointer(store Store, persistenceKey string, logger *slog.Logger) *Pointer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pointer{store: store, key: Key(persistenceKey), logger: logger}
}

// Enabled reports whether the pointer is backed by a store.
func (p *Pointer) Enabled() bool { return p != nil && p.store != nil }

// StorageKey returns the key used inside the store.
func (p *Pointer) StorageKey() string { return p.key }

// Read returns the stored index. Missing, unreadable or malformed entries
// are reported as absent.
func (p *Pointer) Read() (int, bool) {
	if !p.Enabled() {
		return 0, false
	}
	data, ok, err := p.store.Get(p.key)
	if err != nil {
		p.logger.Warn("read persisted pointer failed", "key", p.key, "error", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	var doc pointerDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		p.logger.Warn("persisted pointer is corrupt", "key", p.key, "error", err)
		return 0, false
	}
	id, err := doc.ID.Int64()
	if err != nil || id < 1 {
		p.logger.Warn("persisted pointer has no usable id", "key", p.key, "id", doc.ID.String())
		return 0, false
	}
	return int(id), true
}

// Write stores index. Failures wrap ErrUnavailable.
func (p *Pointer) Write(index int) error {
	if !p.Enabled() {
		return nil
	}
	if index < 1 {
		return fmt.Errorf("write pointer %d: %w: index must be positive", index, ErrUnavailable)
	}
	data, err := json.Marshal(map[string]int{"id": index})
	if err != nil {
		return fmt.Errorf("encode pointer: %w: %v", ErrUnavailable, err)
	}
	if err := p.store.Put(p.key, data); err != nil {
		return fmt.Errorf("write pointer: %w: %v", ErrUnavailable, err)
	}
	return nil
}

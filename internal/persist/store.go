// Package persist stores the last-viewed index of each viewer instance.
//
// A Store is a plain byte key-value store. Two durable backings exist:
// FileStore (one file per key, the "remote" mode) and BoltStore (a bbolt
// database, the "local" mode). Pointer layers the {"id": N} document on top.
package persist

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
)

// ErrUnavailable marks a failed read or write against the durable store.
var ErrUnavailable = errors.New("persistence unavailable")

// Store is a byte key-value store. Get reports ok=false for a missing key.
type Store interface {
	Get(key string) (value []byte, ok bool, err error)
	Put(key string, value []byte) error
}

// Key derives the storage key for a persistence key: "<key>/data" with
// surrounding space and leading, trailing and repeated slashes collapsed,
// so "a//b" and "a/b" share a key. Keys that pass CheckKey and differ
// after that collapsing give distinct storage keys.
func Key(persistenceKey string) string {
	joined := strings.Trim(strings.TrimSpace(persistenceKey), "/") + "/data"
	return strings.TrimPrefix(path.Clean("/"+joined), "/")
}

// CheckKey rejects persistence keys that Key cannot map to a distinct
// storage key: blank keys and keys with "." or ".." segments.
func CheckKey(persistenceKey string) error {
	trimmed := strings.Trim(strings.TrimSpace(persistenceKey), "/")
	if trimmed == "" {
		return fmt.Errorf("persistence key %q: must not be empty", persistenceKey)
	}
	for _, part := range strings.Split(trimmed, "/") {
		if part == "." || part == ".." {
			return fmt.Errorf("persistence key %q: %q segments are not allowed", persistenceKey, part)
		}
	}
	return nil
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return fmt.Errorf("invalid key %q", key)
		}
	}
	return nil
}

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Put(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

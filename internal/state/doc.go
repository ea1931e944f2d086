// Package state folds instance events into per-instance views for the UI.
//
// # Overview
//
// Instances report progress as events (CATALOG_READY, ITEM_UPDATED,
// FETCH_ERROR) from navigation and timer goroutines. The Store implements
// instance.Sink, applies each event under a write lock, and hands the UI
// immutable snapshots on demand:
//
//	Instances:                      UI:
//	┌──────────────────┐           ┌──────────────────┐
//	│ navigate / tick  │           │                  │
//	│      ↓           │           │                  │
//	│ sink.Publish(e)  │──────────→│ store.Snapshot() │
//	│                  │  (mutex)  │      ↓           │
//	│                  │           │  render          │
//	└──────────────────┘           └──────────────────┘
//
// # Update Semantics
//
//	ItemUpdated   → Item replaced, LastError cleared, failures reset
//	CatalogReady  → Count raised (never lowered)
//	FetchError    → Item kept, LastError recorded, failures incremented
//
// A persistence_unavailable failure is recorded but does not count towards
// IsOffline, since the catalog itself is still reachable.
//
// # Ordering
//
// Views appear in snapshots in the order their instance was first tracked
// or first reported an event. Call Track at start-up to fix the order to
// the configuration order.
package state

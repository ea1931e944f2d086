// Package instance is the per-display navigation and update-scheduling
// engine.
//
// # Components
//
// Each configured instance owns three collaborators, created together by
// Registry.GetOrCreate and kept for the life of the process:
//
//   - Navigator: the current item and the catalog bound, with the moves
//     First, Latest, Previous, Next, Random and Goto, plus start-up
//     resolution (Start) and one scheduled step (AutoAdvance).
//   - Scheduler: a single one-shot timer with a visibility-aware firing
//     policy (always, onlyHidden, onlyVisible).
//   - persist.Pointer: the last-viewed index, written after every
//     successful move.
//
// # Navigation
//
// Every move resolves a target against the reference index (the current
// item, or the persisted pointer before start-up has produced one) and the
// known bound:
//
//	First     → 1
//	Latest    → fetch latest (may raise the bound)
//	Previous  → ref-1, or latest when ref is 1 or absent
//	Next      → ref+1, or 1 when ref is the bound or absent
//	Random    → uniform in [1, count]
//	Goto(k)   → k clamped into [1, count]
//
// A successful fetch replaces the current item, writes the pointer, emits
// ITEM_UPDATED and re-arms the scheduler, in that order. A failed fetch
// emits FETCH_ERROR and changes nothing. Only one fetch per instance is
// outstanding; a move requested meanwhile returns ErrBusy.
//
// # Start-up
//
// The first catalog load is shared by all instances through
// catalog.Bootstrap, so concurrent start-up issues one latest fetch. The
// start item is the persisted pointer if one exists, otherwise the
// configured initial position. An initial position of latest reuses the
// bootstrap item without another request. When start-up fails the timer
// is armed anyway and the next tick retries.
//
// # Scheduling
//
//	Arm()      cancel the pending timer, clear the deferred flag, start a
//	           new timer unless the interval is disabled
//	tick       if the policy permits: AutoAdvance, then Arm
//	           otherwise: remember the tick (deferred) and stay idle
//	Suspend()  hidden; replay a deferred tick under onlyHidden, else arm
//	           an idle timer unless the policy is onlyHidden
//	Resume()   visible; replay a deferred tick under onlyVisible, else arm
//	           an idle timer
//
// Every explicit move also re-arms, restarting the interval.
//
// # Events
//
// Instances report to a Sink: CATALOG_READY{count}, ITEM_UPDATED{item} and
// FETCH_ERROR{kind, detail} with kind catalog_unavailable, fetch_failed or
// persistence_unavailable. Publish is called synchronously from navigation
// and timer goroutines.
package instance

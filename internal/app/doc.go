// Package app is the composition root of panels.
//
// # Overview
//
// Run wires configuration, logging, the catalog client, the persistence
// backings, the instance registry and the state store together and hands
// them to the UI. Step and Fetch are the one-shot variants behind the
// "panels step" and "panels fetch" commands.
//
// # Start-up
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        resolve and validate the config file
//	       ├─────> prefs.Load()         theme and last focused instance
//	       ├─────> logging.Setup()      JSON log file (discard on failure)
//	       ├─────> Build()              client, stores, registry, instances
//	       ├─────> state.Store.Track()  one view per instance
//	       └─────> ui.Run()             blocks; StartAll runs from Init
//
// # Stores
//
// Build opens only the backings that some instance asks for:
//
//   - persistence = "remote": persist.FileStore under [storage] dir
//   - persistence = "local": persist.BoltStore at [storage] db
//
// A backing that fails to open is logged at warn and left out. The
// registry then disables the pointer for the affected instances, so a
// broken disk never keeps the viewer from starting.
//
// # Errors
//
// Run returns configuration errors and client construction errors. Network
// and storage failures after start-up are reported through engine events
// and the log; they never end the program.
package app

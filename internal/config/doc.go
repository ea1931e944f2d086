// Package config loads the panels configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided (--config), use it
//  2. Otherwise, use $PANELS_CONFIG when set
//  3. Otherwise, use ~/.config/panels/config.toml
//  4. If the file doesn't exist, fall back to defaults
//
// A file that exists but does not parse is an error ("parse config: ...").
// Scalar keys may be overridden from the environment with the PANELS_
// prefix and dots replaced by underscores, e.g. PANELS_LOGGING_LEVEL.
//
// # TOML Format
//
//	[catalog]
//	base_url = "https://xkcd.com"
//	timeout = "10s"
//
//	[logging]
//	file = "~/.local/share/panels/panels.log"
//	level = "info"
//
//	[storage]
//	dir = "~/.local/share/panels/store"   # persistence = "remote"
//	db = "~/.local/share/panels/panels.db" # persistence = "local"
//
//	[display]
//	header = "xkcd"
//	show_title = true
//	show_date = true
//	show_alt_text = true
//	show_num = true
//
//	[[instances]]
//	id = "hall"
//	initial_position = "latest"   # first | latest | random | <index>
//	sequence = "random"           # random | reverse | latest | default
//	visibility_firing = "always"  # always | onlyHidden | onlyVisible
//	update_interval = "1h"        # duration, milliseconds, or "disabled"
//	persistence = "none"          # none | local | remote
//	persistence_key = "hall"
//
// Without any [[instances]] table a single instance named "main" runs with
// the defaults shown above. Instance ids must be unique.
//
// # Legacy Values
//
// visibility_firing accepts the old updateOnSuspension values: true means
// onlyHidden, false means onlyVisible. persistence accepts client and
// electron for local, and server for remote.
package config

// Package config holds the small set of runtime defaults the CFTI daemon
// starts with before any unit file is read: locale, the default command
// timeout, and a fallback working directory (cfti::config::Config).
package config

import "time"

// DefaultTimeout is applied to any Test or Scenario unit that does not
// specify its own Timeout=, matching the original's hard-coded 2000-second
// per-unit default (types/test.rs, types/scenario.rs). This is distinct
// from Config's own Timeout default below: the two were conflated into one
// constant in an earlier pass, which meant Config.Timeout (spec.md §4.H's
// own 3600-second default) was never actually produced anywhere.
const DefaultTimeout = 2000 * time.Second

// ConfigDefaultTimeout is Config.Timeout's own zero-config value
// (cfti::config::Config::default, spec.md §4.H), used for gates that read
// Config directly rather than a Test/Scenario unit's Timeout= field — e.g.
// the jig TestProgram check.
const ConfigDefaultTimeout = 3600 * time.Second

// Config carries the handful of values every unit loader is handed
// alongside its own unit file, mirroring cfti::config::Config's
// `{ locale, timeout }` but widened per spec.md §4.H to also carry an
// optional default working directory pulled from an optional config.yaml.
type Config struct {
	// Locale selects message formatting; currently informational only, as
	// in the original (cfti::config::Config::locale).
	Locale string

	// Timeout bounds gates that read Config directly, such as the jig
	// TestProgram check; Test and Scenario units without their own Timeout=
	// fall back to DefaultTimeout instead.
	Timeout time.Duration

	// DefaultWorkingDirectory, if set, is used when neither the jig nor the
	// unit itself specifies a WorkingDirectory.
	DefaultWorkingDirectory string
}

// Default returns the zero-config baseline: "en_US" locale, the standard
// 3600-second timeout, and no default working directory.
func Default() Config {
	return Config{
		Locale:  "en_US",
		Timeout: ConfigDefaultTimeout,
	}
}

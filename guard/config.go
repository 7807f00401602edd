package guard

import "github.com/kolkov/accessguard/internal/guard/config"

// Severity controls whether a detected bad access is eligible to trap the
// debugger (Assertion) or is purely informational (Warning).
type Severity = config.Severity

const (
	Warning   = config.Warning
	Assertion = config.Assertion
)

// Sink receives a formatted bad-access report and returns whether the
// caller may still trap the debugger afterward (subject to
// Config.AllowBreak/BreakASAP).
type Sink = config.Sink

// Config is the process-wide bad-access policy. See internal/guard/config
// for field documentation.
type Config = config.Config

// GetConfig returns the current process-wide configuration.
func GetConfig() Config {
	return config.Get()
}

// SetConfig installs a new process-wide configuration. A nil Sink is
// replaced by the default stderr sink.
func SetConfig(c Config) {
	config.Set(c)
}

// DefaultSink is the default report sink: writes to stderr, always allows
// a subsequent trap.
var DefaultSink = config.DefaultSink

// Package config holds the process-wide, best-effort-synchronized
// configuration for the misuse detector: whether it is allowed to trap the
// debugger, whether it should trap before or after reporting, and which
// sink receives formatted reports.
//
// Reads and writes are published through a single atomic pointer rather
// than a mutex, matching the library this module adapts: configuration is
// expected to be set once near process startup and read from arbitrary
// goroutines afterward, not churned at a high rate from a hot path.
package config

import (
	"fmt"
	"os"
	"sync/atomic"
)

// Severity distinguishes a hard assertion from a soft warning; only
// assertions are eligible for a debugger trap.
type Severity int

const (
	// Warning is reported but never traps the debugger.
	Warning Severity = iota
	// Assertion may trap the debugger, subject to AllowBreak/BreakASAP.
	Assertion
)

func (s Severity) String() string {
	if s == Assertion {
		return "assertion"
	}
	return "warning"
}

// Sink receives a fully formatted bad-access report and decides whether
// the caller is still permitted to trap the debugger afterward. The
// default sink always returns true; a sink that wants to suppress
// debugger traps entirely (e.g. because it already escalated via its own
// channel) returns false.
type Sink func(report string) (allowBreak bool)

// Config is the process-wide, best-effort-published bad-access policy.
type Config struct {
	// AllowBreak gates every debugger trap; false disables trapping
	// entirely regardless of BreakASAP.
	AllowBreak bool
	// BreakASAP traps before the sink runs (to catch an offending thread
	// mid-access) rather than after (to let the report reach the sink
	// first). Default false: most environments want the report logged
	// even when no debugger is attached.
	BreakASAP bool
	// Sink formats and emits the report. Nil is replaced by
	// DefaultSink at Set time, mirroring the library this module adapts
	// always having a non-null reportBadAccess.
	Sink Sink
}

// DefaultSink writes the report to stderr followed by a newline and always
// allows a subsequent trap.
func DefaultSink(report string) bool {
	fmt.Fprintln(os.Stderr, report)
	return true
}

var current atomic.Pointer[Config]

func init() {
	current.Store(&Config{AllowBreak: true, BreakASAP: false, Sink: DefaultSink})
}

// Get returns the current configuration. Safe to call from any goroutine.
func Get() Config {
	return *current.Load()
}

// Set installs a new configuration, publishing it atomically for every
// goroutine. A nil Sink is replaced by DefaultSink.
func Set(c Config) {
	if c.Sink == nil {
		c.Sink = DefaultSink
	}
	current.Store(&c)
}

// Package handler implements the cold path triggered whenever a guard
// observes a shadow word it did not expect: it classifies the bad access
// (corrupted shadow, same-goroutine recursion, or a cross-goroutine race),
// formats a human-readable report, and applies the configured
// before/after debugger-trap policy.
package handler

import (
	"fmt"
	"strings"

	"github.com/kolkov/accessguard/internal/guard/config"
	"github.com/kolkov/accessguard/internal/guard/platform"
	"github.com/kolkov/accessguard/internal/guard/shadow"
)

// stateLabel renders a State for report text. target is needed because
// ReadingOrIdle is ambiguous in isolation: it is both the idle state and
// the state a Write/WriteEx guard restores on a clean exit, so the only
// way we ever observe it as a *previous* state during a bad access is
// because a write guard was the one entering or leaving — never because
// someone is "idle". Carried over from the report template this package is
// grounded on, not invented here.
func stateLabel(s shadow.State, target shadow.State) string {
	switch s {
	case shadow.ReadingOrIdle:
		if target == shadow.Writing {
			return "Writing"
		}
		return "Reading"
	case shadow.Writing:
		return "Writing"
	case shadow.DestructorCalled:
		return "Destroyed"
	default:
		return "Corrupted"
	}
}

// debugTrap is a var, not a direct call to platform.DebugTrap, so tests in
// this package can substitute a no-op and assert break-before/break-after
// ordering without actually raising a signal against the test process.
var debugTrap = platform.DebugTrap

// Handle classifies a bad access observed when transitioning toward
// target, formats a report, runs it through the configured Sink, and
// applies the trap policy. message, when non-empty, is reported verbatim
// instead of being classified — this is the WriteEx/ReadEx escape hatch for
// a caller-supplied diagnostic.
func Handle(previous shadow.ShadowWord, target shadow.State, severity config.Severity, message string) {
	cfg := config.Get()

	if severity == config.Assertion && cfg.AllowBreak && cfg.BreakASAP {
		debugTrap()
	}

	report := formatReport(previous, target, severity, message)
	allowBreak := true
	if cfg.Sink != nil {
		allowBreak = cfg.Sink(report)
	}

	if severity == config.Assertion && allowBreak && cfg.AllowBreak && !cfg.BreakASAP {
		debugTrap()
	}
}

func formatReport(previous shadow.ShadowWord, target shadow.State, severity config.Severity, message string) string {
	if message != "" {
		return message
	}

	prevState, mark := previous.Decode()
	if prevState >= shadowStatesCount {
		return "Shadow value was corrupted! This could be due to use-after-destroy, out of bounds writes, etc..."
	}

	if platform.IsCurrentGoroutine(mark) {
		var b strings.Builder
		fmt.Fprintf(&b, "Recursion detected: this may lead to invalid operations\n")
		fmt.Fprintf(&b, "- Parent operation: %s.\n", stateLabel(prevState, target))
		fmt.Fprintf(&b, "- This operation: %s.", stateLabel(target, target))
		return b.String()
	}

	name, found := platform.FindOwner(mark)
	desc := "<unknown>"
	if found {
		if name == "" {
			desc = fmt.Sprintf("id=%d", mark)
		} else {
			desc = fmt.Sprintf("%s (id=%d)", name, mark)
		}
	} else {
		desc = fmt.Sprintf("id=%d (exited)", mark)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Race condition: multiple goroutines are reading/writing the data at the same time, potentially corrupting it!\n")
	fmt.Fprintf(&b, "- Other goroutine: %s, last seen %s.\n", desc, stateLabel(prevState, target))
	fmt.Fprintf(&b, "- This goroutine: %s.", stateLabel(target, target))
	return b.String()
}

// shadowStatesCount mirrors shadow's unexported statesCount so handler can
// detect corruption without the shadow package needing to export an
// internal constant purely for this check.
const shadowStatesCount = shadow.DestructorCalled + 1

//go:build !guard_disable && !race

package guard

import (
	"github.com/kolkov/accessguard/internal/guard/handler"
	"github.com/kolkov/accessguard/internal/guard/platform"
	"github.com/kolkov/accessguard/internal/guard/shadow"
)

// Shadow is the one word of state embedded per guarded value. The zero
// value is valid: freshly zeroed memory reads as ReadingOrIdle with no
// owning goroutine, matching a container's newly allocated field needing
// no explicit initialization.
type Shadow struct {
	cell shadow.Cell
}

func currentMark() uint64 {
	return platform.CurrentGoroutineID()
}

func checkAndMaybeReport(s *Shadow, expect shadow.State, target shadow.State, severity Severity, message string) {
	previous := s.cell.Load()
	if previous.DecodeState() != expect {
		handler.Handle(previous, target, severity, message)
	}
}

// Read checks that no write or destroy is in progress on s. It never
// stores back: a reader that raced with another reader has nothing to
// report, and checking again after the read would cost more than it is
// worth for the bad accesses it would additionally catch (a concurrent
// write would already have been caught by the writer's own guard).
func Read(s *Shadow) {
	checkAndMaybeReport(s, shadow.ReadingOrIdle, shadow.ReadingOrIdle, Assertion, "")
}

// ReadFunc checks s exactly like Read, then runs fn. It exists for call
// sites that prefer a single expression over a bare Read(s) call followed
// by the read itself on the next line; the underlying check is identical.
func ReadFunc(s *Shadow, fn func()) {
	Read(s)
	fn()
}

// ReadEx is Read with an explicit severity and a caller-supplied message
// used verbatim instead of the default classification.
func ReadEx(s *Shadow, severity Severity, message string) {
	checkAndMaybeReport(s, shadow.ReadingOrIdle, shadow.ReadingOrIdle, severity, message)
}

// Guard is returned by Write and WriteEx; callers must defer Done().
// Destroy has no Guard — see Destroy.
type Guard struct {
	shadow *Shadow
}

// Done releases a Write/WriteEx guard, restoring ReadingOrIdle after
// checking that nothing else clobbered the Writing state in between.
func (g Guard) Done() {
	if g.shadow == nil {
		return
	}
	checkAndMaybeReport(g.shadow, shadow.Writing, shadow.Writing, Assertion, "")
	g.shadow.cell.Store(shadow.Pack(shadow.ReadingOrIdle, currentMark()))
}

// Write checks that s is not already being written or destroyed, then
// unconditionally marks it Writing — unconditionally so that a concurrent
// goroutine racing on s is far more likely to observe a state it does not
// expect, which is what makes the race detectable from either side. An
// in-progress Read leaves no trace in s, so it is not detected here, and
// two writers that both load s before either stores can both miss.
func Write(s *Shadow) Guard {
	checkAndMaybeReport(s, shadow.ReadingOrIdle, shadow.Writing, Assertion, "")
	s.cell.Store(shadow.Pack(shadow.Writing, currentMark()))
	return Guard{shadow: s}
}

// WriteEx is Write with an explicit severity and message. The severity and
// message apply to the entry check only: the returned Guard's Done checks
// and reports exactly like a plain Write's, at Assertion severity with the
// default classified report.
func WriteEx(s *Shadow, severity Severity, message string) Guard {
	checkAndMaybeReport(s, shadow.ReadingOrIdle, shadow.Writing, severity, message)
	s.cell.Store(shadow.Pack(shadow.Writing, currentMark()))
	return Guard{shadow: s}
}

// Destroy checks that s is not already being written or destroyed (an
// in-progress Read leaves no trace in s), then marks it DestructorCalled
// permanently. There is no Done: once set,
// every later guard on s reports bad access for the life of the value —
// there is nothing left to release.
func Destroy(s *Shadow) {
	checkAndMaybeReport(s, shadow.ReadingOrIdle, shadow.DestructorCalled, Assertion, "")
	s.cell.Store(shadow.Pack(shadow.DestructorCalled, currentMark()))
}

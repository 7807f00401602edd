// Package guard is a lightweight, always-on misuse detector for mutable
// containers. Embed a guard.Shadow field in a struct and wrap each
// operation in the matching scoped guard:
//
//	type Vector struct {
//		shadow guard.Shadow
//		data   []int
//	}
//
//	func (v *Vector) PushBack(x int) {
//		g := guard.Write(&v.shadow)
//		defer g.Done()
//		v.data = append(v.data, x)
//	}
//
//	func (v *Vector) At(i int) int {
//		guard.Read(&v.shadow)
//		return v.data[i]
//	}
//
// # What it catches
//
// Three classes of misuse, each from a single packed word per guarded
// value: concurrent access from two goroutines with no synchronization
// between them (a race), a goroutine mutating a value it is already
// mutating further up its own call stack (recursion), and any access after
// the value's Destroy guard has run (use-after-destroy). It does not build
// a happens-before graph, is not deterministic, and is not a memory-safety
// tool — see the package-level Non-goals in this repository's design
// notes.
//
// # How it works
//
// Every guarded value carries one atomically-loaded/stored word: two bits
// of state (idle/reading, writing, destroyed) plus the identity of the
// goroutine that last touched it. A guard's constructor loads the word,
// checks it against the state it expects to see, and — for every guard but
// Read — stores a new word unconditionally so that a concurrent goroutine
// racing on the same value is far more likely to observe a state it does
// not expect and report it. Detection is best-effort: racing accesses that
// happen not to observe each other's stores go unreported. See internal/guard/shadow for the encoding.
//
// # Disabling at compile time
//
// Build with the guard_disable tag to compile every guard down to a
// zero-size no-op and Shadow down to an empty struct, for release builds
// that want zero overhead. Building with go test/go build -race disables
// guard automatically: Go's own race detector already supersedes it, and
// running both simultaneously would only slow a -race build down further
// for no additional coverage.
package guard

//go:build !unix

package platform

import "runtime/debug"

// DebugTrap has no SIGTRAP equivalent on this platform; it prints a stack
// trace instead, matching the "unknown platform, do your best" fallback
// the library this package adapts falls back to when it has no compiler
// intrinsic available either.
func DebugTrap() {
	debug.PrintStack()
}

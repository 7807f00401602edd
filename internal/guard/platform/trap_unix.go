//go:build unix

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// DebugTrap raises SIGTRAP against the current process, the closest
// portable Go equivalent of the compiler intrinsics
// (__builtin_debugtrap/__debugbreak/int $0x03) the library this package
// adapts uses for the same purpose: stopping the process under a debugger
// right where a bad access was detected.
func DebugTrap() {
	_ = unix.Kill(os.Getpid(), unix.SIGTRAP)
}

package platform

import (
	"bytes"
	"runtime"
)

// stackScanInitialSize is the starting buffer for a full-process stack
// dump; grown and retried if the dump was truncated, mirroring the growth
// loop runtime/pprof uses for the same call.
const stackScanInitialSize = 1 << 16

// dumpAllStacks returns runtime.Stack(..., true) output, growing the
// buffer until the dump is not truncated.
func dumpAllStacks() []byte {
	buf := make([]byte, stackScanInitialSize)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			return buf[:n]
		}
		buf = make([]byte, 2*len(buf))
	}
}

// goroutineRecord is one goroutine's entry in a full stack dump: its ID,
// reported scheduler state, and the first function frame beneath the
// header line (used as a last-resort name when nothing was registered).
type goroutineRecord struct {
	id          uint64
	state       string
	topFuncName string
}

// scanGoroutines parses a full runtime.Stack(true) dump into one record
// per goroutine. Never allocates per-goroutine beyond the records
// themselves; a dead goroutine simply never appears in the dump, so unlike
// the OS-thread enumeration this package is modeled on, there is no race
// between "is it still alive" and "read its info": the dump is a single
// consistent, if stale-by-the-time-you-read-it, snapshot.
func scanGoroutines(dump []byte) []goroutineRecord {
	var records []goroutineRecord
	lines := bytes.Split(dump, []byte{'\n'})
	for i := 0; i < len(lines); i++ {
		if !bytes.HasPrefix(lines[i], goroutineIDPrefix) {
			continue
		}
		id, state := parseGoroutineHeader(lines[i])
		rec := goroutineRecord{id: id, state: state}
		if i+1 < len(lines) {
			rec.topFuncName = topFuncName(lines[i+1])
		}
		records = append(records, rec)
	}
	return records
}

// topFuncName extracts "pkg.Func" from a frame line such as
// "pkg.Func(0x1, 0x2)" or "pkg.(*Type).Method(...)".
func topFuncName(frameLine []byte) string {
	if paren := bytes.LastIndexByte(frameLine, '('); paren > 0 {
		return string(bytes.TrimSpace(frameLine[:paren]))
	}
	return string(bytes.TrimSpace(frameLine))
}

// FindOwner looks for a live goroutine whose ID matches id within the
// current full-process stack dump, returning its best-available name.
// Returns found=false when the goroutine has already exited by the time of
// the scan — never a crash, since this only ever reads a point-in-time
// snapshot, unlike the OS APIs this package's counterpart in the library it
// is modeled on must defend against with structured exception handling.
func FindOwner(id uint64) (name string, found bool) {
	for _, rec := range scanGoroutines(dumpAllStacks()) {
		if rec.id == id {
			if label, ok := lookupName(id); ok {
				return label, true
			}
			if rec.topFuncName != "" {
				return rec.topFuncName, true
			}
			return "", true
		}
	}
	return "", false
}

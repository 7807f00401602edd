// Command guarddemo demonstrates the misuse detector catching a
// cross-goroutine race on a guardedslice.Slice with no external
// synchronization.
//
// This program shows what the detector reports when two goroutines push
// into the same guarded slice concurrently with nothing serializing them.
// Unlike the teacher's mutex_protected example, which demonstrates the
// ABSENCE of a bug, this one deliberately reproduces one: the point of a
// misuse detector is best shown by the misuse it catches.
//
// Usage:
//
//	guarddemo
//
// Set GUARD_BREAK_ASAP=1 to have the detector trap the process (SIGTRAP on
// unix) before the report is even logged; without it the demo never traps
// and only logs reports — a
// convenience toggle analogous to the teacher's own GORACE=... env var,
// not a persisted configuration format (the detector has none; see
// guard.SetConfig for the only way to configure it programmatically).
//
// Expected: at least one race report on stderr naming two goroutines.
package main

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kolkov/accessguard/examples/guardedslice"
	"github.com/kolkov/accessguard/guard"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	breakASAP := os.Getenv("GUARD_BREAK_ASAP") == "1"
	var reportCount int
	var mu sync.Mutex
	guard.SetConfig(guard.Config{
		AllowBreak: breakASAP,
		BreakASAP:  breakASAP,
		Sink: func(report string) bool {
			mu.Lock()
			reportCount++
			mu.Unlock()
			log.Warn().Msg(report)
			return true
		},
	})

	log.Info().Msg("pushing into one guardedslice.Slice from two goroutines with no synchronization")

	var s guardedslice.Slice[int]
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			<-start
			for j := 0; j < 1000; j++ {
				s.PushBack(id*1000 + j)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	mu.Lock()
	n := reportCount
	mu.Unlock()
	log.Info().Int("reports", n).Int("final_len", s.Len()).Msg("done")
}

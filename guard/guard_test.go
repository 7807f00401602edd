//go:build !guard_disable && !race

package guard

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureReports(t *testing.T) *[]string {
	t.Helper()
	var reports []string
	SetConfig(Config{AllowBreak: false, Sink: func(report string) bool {
		reports = append(reports, report)
		return true
	}})
	t.Cleanup(func() { SetConfig(Config{}) })
	return &reports
}

func TestWriteDoneCleanRoundTrip(t *testing.T) {
	reports := captureReports(t)
	var s Shadow
	g := Write(&s)
	g.Done()
	assert.Empty(t, *reports, "clean write/Done cycle must not report anything")
}

func TestReadFuncRunsAndChecks(t *testing.T) {
	reports := captureReports(t)
	var s Shadow
	var ran bool
	ReadFunc(&s, func() { ran = true })
	assert.True(t, ran)
	assert.Empty(t, *reports)
}

func TestReadAfterReadNeverReports(t *testing.T) {
	reports := captureReports(t)
	var s Shadow
	Read(&s)
	Read(&s)
	assert.Empty(t, *reports)
}

func TestWriteWhileWritingReportsRecursion(t *testing.T) {
	// A Read leaves the shadow at ReadingOrIdle, so write-while-reading
	// cannot be observed; this exercises the recursive-write case instead,
	// which this package can trigger deterministically from a single
	// goroutine: entering Write twice without releasing the first.
	reports := captureReports(t)
	var s Shadow
	outer := Write(&s)
	inner := Write(&s) // recursive mutation
	require.Len(t, *reports, 1)
	assert.Contains(t, (*reports)[0], "Recursion detected")
	inner.Done()
	outer.Done()
}

func TestDestroyWhileWritingReportsDestroyedAsThisOperation(t *testing.T) {
	reports := captureReports(t)
	var s Shadow
	outer := Write(&s)
	Destroy(&s) // recursive destroy while a write is still in progress
	require.Len(t, *reports, 1)
	assert.Contains(t, (*reports)[0], "Parent operation: Writing")
	assert.Contains(t, (*reports)[0], "This operation: Destroyed")
	outer.Done()
}

func TestDestroyIsTerminal(t *testing.T) {
	reports := captureReports(t)
	var s Shadow
	Destroy(&s)
	assert.Empty(t, *reports, "a clean Destroy with nothing outstanding must not report")

	Read(&s)
	require.Len(t, *reports, 1)
	assert.Contains(t, (*reports)[0], "Destroyed")

	*reports = nil
	g := Write(&s)
	require.Len(t, *reports, 1)
	assert.Contains(t, (*reports)[0], "Destroyed")
	g.Done()
}

func TestConcurrentWriteWriteReportsAreClassified(t *testing.T) {
	reports := captureReports(t)
	var s Shadow
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			g := Write(&s)
			g.Done()
		}()
	}
	close(start)
	wg.Wait()

	// Racing goroutines may or may not collide depending on scheduling;
	// this asserts the detector never panics and, when it does report,
	// reports the right classification. A tight race is provoked instead
	// by TestConcurrentWriteWriteRaceDeterministic below.
	for _, r := range *reports {
		assert.True(t,
			strings.Contains(r, "Race condition") || strings.Contains(r, "Recursion detected"),
			"unexpected report: %s", r)
	}
}

func TestConcurrentWriteWriteRaceDeterministic(t *testing.T) {
	reports := captureReports(t)
	var s Shadow

	// Goroutine A enters Write and holds it open; goroutine B enters Write
	// while A is still inside, guaranteeing the shadow word is not
	// ReadingOrIdle when B checks, which guarantees a report.
	aEntered := make(chan struct{})
	aRelease := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		g := Write(&s)
		close(aEntered)
		<-aRelease
		g.Done()
	}()

	<-aEntered
	g := Write(&s)
	g.Done()
	close(aRelease)
	wg.Wait()

	require.NotEmpty(t, *reports)
	assert.Contains(t, (*reports)[0], "Race condition")
}

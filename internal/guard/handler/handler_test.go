package handler

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolkov/accessguard/internal/guard/config"
	"github.com/kolkov/accessguard/internal/guard/platform"
	"github.com/kolkov/accessguard/internal/guard/shadow"
)

func withCapturedReports(t *testing.T) *[]string {
	t.Helper()
	var reports []string
	config.Set(config.Config{AllowBreak: false, Sink: func(report string) bool {
		reports = append(reports, report)
		return true
	}})
	t.Cleanup(func() { config.Set(config.Config{}) })
	return &reports
}

func TestHandleMessageForwardedVerbatim(t *testing.T) {
	reports := withCapturedReports(t)
	Handle(shadow.Pack(shadow.Writing, 1), shadow.Writing, config.Warning, "custom diagnostic")
	require.Len(t, *reports, 1)
	assert.Equal(t, "custom diagnostic", (*reports)[0])
}

func TestHandleCorruption(t *testing.T) {
	reports := withCapturedReports(t)
	corrupted := shadow.ShadowWord(0xFF) // state bits == 3 == statesCount, out of range
	Handle(corrupted, shadow.Writing, config.Assertion, "")
	require.Len(t, *reports, 1)
	assert.Contains(t, (*reports)[0], "corrupted")
}

func TestHandleRecursionSameGoroutine(t *testing.T) {
	reports := withCapturedReports(t)
	previous := shadow.Pack(shadow.Writing, platform.CurrentGoroutineID())
	Handle(previous, shadow.Writing, config.Assertion, "")
	require.Len(t, *reports, 1)
	assert.Contains(t, (*reports)[0], "Recursion detected")
}

func TestHandleRaceOtherGoroutine(t *testing.T) {
	reports := withCapturedReports(t)

	ready := make(chan uint64)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		platform.RegisterName("other-goroutine")
		ready <- platform.CurrentGoroutineID()
		<-done
	}()
	otherID := <-ready

	previous := shadow.Pack(shadow.Writing, otherID)
	Handle(previous, shadow.Writing, config.Assertion, "")
	close(done)
	wg.Wait()

	require.Len(t, *reports, 1)
	assert.Contains(t, (*reports)[0], "Race condition")
	assert.Contains(t, (*reports)[0], "other-goroutine")
}

func TestHandleBreakOrdering(t *testing.T) {
	var order []string
	realTrap := debugTrap
	debugTrap = func() { order = append(order, "trap") }
	t.Cleanup(func() { debugTrap = realTrap })

	config.Set(config.Config{
		AllowBreak: true,
		BreakASAP:  false,
		Sink: func(report string) bool {
			order = append(order, "sink")
			return true
		},
	})
	t.Cleanup(func() { config.Set(config.Config{}) })

	Handle(shadow.Pack(shadow.Writing, 999999999), shadow.Writing, config.Assertion, "")
	require.Equal(t, []string{"sink", "trap"}, order)

	order = nil
	config.Set(config.Config{
		AllowBreak: true,
		BreakASAP:  true,
		Sink: func(report string) bool {
			order = append(order, "sink")
			return true
		},
	})
	Handle(shadow.Pack(shadow.Writing, 999999999), shadow.Writing, config.Assertion, "")
	require.Equal(t, []string{"trap", "sink"}, order)
}

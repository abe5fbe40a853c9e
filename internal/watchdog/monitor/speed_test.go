package monitor

import (
	"testing"
	"time"

	"watchdog/internal/watchdog/snapshot"
	"watchdog/internal/watchdog/statestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

func priceSnap(t *testing.T, code string, price float64) *snapshot.Snapshot {
	t.Helper()
	return buildSnap(t,
		[]string{"代码", "名称", "最新价"},
		[]any{code, "测试基金", price},
	)
}

func newSpeedTracker(codes ...string) *SpeedTracker {
	return NewSpeedTracker(codes, 600*time.Second, 2.0, statestore.NewMemoryStore(), zap.NewNop())
}

func TestSpeedSingleSampleNeverClassifies(t *testing.T) {
	tracker := newSpeedTracker("501000")
	assert.Empty(t, tracker.Poll(time.Now(), priceSnap(t, "501000", 100)))
}

func TestSpeedSurgeUpEntryOnly(t *testing.T) {
	tracker := newSpeedTracker("501000")
	t0 := time.Now()

	assert.Empty(t, tracker.Poll(t0, priceSnap(t, "501000", 100)))

	// +3% inside the window: one entry event.
	events := tracker.Poll(t0.Add(60*time.Second), priceSnap(t, "501000", 103))
	require.Len(t, events, 1)
	assert.Equal(t, FastUpStarted, events[0].Kind)
	assert.InDelta(t, 10.0, events[0].WindowMinutes, 1e-9)
	require.NotNil(t, events[0].PctChange)
	assert.InDelta(t, 3.0, *events[0].PctChange, 1e-9)

	// Sustained surge: no re-alert.
	assert.Empty(t, tracker.Poll(t0.Add(120*time.Second), priceSnap(t, "501000", 103.5)))
}

func TestSpeedWindowEviction(t *testing.T) {
	tracker := newSpeedTracker("501000")
	t0 := time.Now()

	tracker.Poll(t0, priceSnap(t, "501000", 100))
	tracker.Poll(t0.Add(60*time.Second), priceSnap(t, "501000", 103))   // FAST_UP
	tracker.Poll(t0.Add(120*time.Second), priceSnap(t, "501000", 103.5)) // sustained

	// At t0+700s only the 103.5 sample is younger than 600s. Against that
	// base the price fell 2.4%, so the tracker flips to FAST_DOWN; had the
	// stale 100 sample survived, the move would read as +1% and stay NORMAL.
	events := tracker.Poll(t0.Add(700*time.Second), priceSnap(t, "501000", 101))
	require.Len(t, events, 1)
	assert.Equal(t, FastDownStarted, events[0].Kind)
}

func TestSpeedNoCalmedDownAlert(t *testing.T) {
	tracker := newSpeedTracker("501000")
	t0 := time.Now()

	tracker.Poll(t0, priceSnap(t, "501000", 100))
	events := tracker.Poll(t0.Add(60*time.Second), priceSnap(t, "501000", 103))
	require.Len(t, events, 1)

	// Drifting back inside the threshold ends the surge silently.
	assert.Empty(t, tracker.Poll(t0.Add(120*time.Second), priceSnap(t, "501000", 101)))

	// A fresh surge after calming alerts again.
	events = tracker.Poll(t0.Add(180*time.Second), priceSnap(t, "501000", 104))
	require.Len(t, events, 1)
	assert.Equal(t, FastUpStarted, events[0].Kind)
}

func TestSpeedGapResetsHistory(t *testing.T) {
	tracker := newSpeedTracker("501000")
	t0 := time.Now()

	tracker.Poll(t0, priceSnap(t, "501000", 100))
	// After a gap longer than the window every old sample is evicted and
	// the single fresh sample cannot classify.
	assert.Empty(t, tracker.Poll(t0.Add(2000*time.Second), priceSnap(t, "501000", 150)))
}

func TestSpeedIgnoresMissingAndNonPositivePrices(t *testing.T) {
	tracker := newSpeedTracker("501000")
	t0 := time.Now()

	halted := buildSnap(t,
		[]string{"代码", "名称", "最新价"},
		[]any{"501000", "测试基金", "--"},
	)
	assert.Empty(t, tracker.Poll(t0, halted))
	assert.Empty(t, tracker.history["501000"])
}

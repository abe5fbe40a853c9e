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

func buildSnap(t *testing.T, columns []string, rows ...[]any) *snapshot.Snapshot {
	t.Helper()
	snap, err := snapshot.Normalize(&snapshot.Table{Columns: columns, Rows: rows})
	require.NoError(t, err)
	return snap
}

func pctSnap(t *testing.T, code string, pct float64) *snapshot.Snapshot {
	t.Helper()
	return buildSnap(t,
		[]string{"代码", "名称", "最新价", "涨跌幅"},
		[]any{code, "测试基金", 11.0, pct},
	)
}

func TestLimitTransitionDedup(t *testing.T) {
	store := statestore.NewMemoryStore()
	tracker := NewLimitTracker([]string{"600519"}, 9.9, store, zap.NewNop())
	now := time.Now()

	// First poll at limit-up: exactly one hit event.
	events := tracker.Poll(now, pctSnap(t, "600519", 10.1))
	require.Len(t, events, 1)
	assert.Equal(t, LimitUpHit, events[0].Kind)
	assert.Equal(t, "600519", events[0].Code)

	// Four more polls with the same status: nothing fires.
	for i := 0; i < 4; i++ {
		assert.Empty(t, tracker.Poll(now, pctSnap(t, "600519", 10.1)))
	}

	// Back to normal: exactly one open-board event.
	events = tracker.Poll(now, pctSnap(t, "600519", 0.0))
	require.Len(t, events, 1)
	assert.Equal(t, LimitUpOpened, events[0].Kind)

	// And it does not repeat either.
	assert.Empty(t, tracker.Poll(now, pctSnap(t, "600519", 0.0)))
}

func TestLimitDown(t *testing.T) {
	store := statestore.NewMemoryStore()
	tracker := NewLimitTracker([]string{"501000"}, 9.9, store, zap.NewNop())
	now := time.Now()

	events := tracker.Poll(now, pctSnap(t, "501000", -9.95))
	require.Len(t, events, 1)
	assert.Equal(t, LimitDownHit, events[0].Kind)

	events = tracker.Poll(now, pctSnap(t, "501000", -3.0))
	require.Len(t, events, 1)
	assert.Equal(t, LimitDownOpened, events[0].Kind)
}

func TestLimitStatusFromPriceBounds(t *testing.T) {
	store := statestore.NewMemoryStore()
	tracker := NewLimitTracker([]string{"600519"}, 9.9, store, zap.NewNop())
	now := time.Now()

	columns := []string{"代码", "最新价", "涨停价", "跌停价"}

	// No pct column: price pinned at the limit-up bound.
	snap := buildSnap(t, columns, []any{"600519", 11.0, 11.0, 9.0})
	events := tracker.Poll(now, snap)
	require.Len(t, events, 1)
	assert.Equal(t, LimitUpHit, events[0].Kind)

	// Price off the bound: open board.
	snap = buildSnap(t, columns, []any{"600519", 10.5, 11.0, 9.0})
	events = tracker.Poll(now, snap)
	require.Len(t, events, 1)
	assert.Equal(t, LimitUpOpened, events[0].Kind)
}

func TestLimitInsufficientDataLeavesStateUntouched(t *testing.T) {
	store := statestore.NewMemoryStore()
	tracker := NewLimitTracker([]string{"600519"}, 9.9, store, zap.NewNop())
	now := time.Now()

	events := tracker.Poll(now, pctSnap(t, "600519", 10.1))
	require.Len(t, events, 1)

	// A poll with neither pct nor usable price bounds decides nothing.
	bare := buildSnap(t,
		[]string{"代码", "名称"},
		[]any{"600519", "测试基金"},
	)
	assert.Empty(t, tracker.Poll(now, bare))

	// The limit-up status survived the skipped poll, so normal pct now
	// produces the open-board event, not a fresh hit.
	events = tracker.Poll(now, pctSnap(t, "600519", 1.0))
	require.Len(t, events, 1)
	assert.Equal(t, LimitUpOpened, events[0].Kind)
}

func TestLimitEmptyWatchlistIsNoop(t *testing.T) {
	tracker := NewLimitTracker(nil, 9.9, statestore.NewMemoryStore(), zap.NewNop())
	assert.Empty(t, tracker.Poll(time.Now(), pctSnap(t, "600519", 10.1)))
}

func TestLimitMissingCodesReported(t *testing.T) {
	store := statestore.NewMemoryStore()
	tracker := NewLimitTracker([]string{"600519", "999999"}, 9.9, store, zap.NewNop())

	// 999999 absent from the snapshot: 600519 still processed.
	events := tracker.Poll(time.Now(), pctSnap(t, "600519", 10.1))
	require.Len(t, events, 1)
	assert.Equal(t, "600519", events[0].Code)
}

func TestLimitStatePersistedAcrossInstances(t *testing.T) {
	store := statestore.NewMemoryStore()
	now := time.Now()

	tracker := NewLimitTracker([]string{"600519"}, 9.9, store, zap.NewNop())
	require.Len(t, tracker.Poll(now, pctSnap(t, "600519", 10.1)), 1)

	// A fresh tracker over the same store must not re-alert: the store is
	// the source of truth across restarts.
	restarted := NewLimitTracker([]string{"600519"}, 9.9, store, zap.NewNop())
	assert.Empty(t, restarted.Poll(now, pctSnap(t, "600519", 10.1)))
}

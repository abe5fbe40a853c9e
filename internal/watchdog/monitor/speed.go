package monitor

import (
	"strings"
	"time"

	"watchdog/internal/watchdog/snapshot"
	"watchdog/internal/watchdog/statestore"

	"go.uber.org/zap"
)

const speedStateKey = "speed"

type sample struct {
	ts    time.Time
	price float64
}

// SpeedTracker detects fast surges: a price change beyond a threshold inside
// a sliding time window, rather than an instantaneous percent move. Alerts
// fire only on entering FAST_UP or FAST_DOWN; there is no "calmed down"
// alert when a surge ends.
//
// The per-code sample windows are process-local and never persisted, so a
// restart clears surge history and the tracker needs a couple of polls to
// become decisive again. Window maps are not safe for concurrent mutation;
// the scheduler must not overlap runs of the same tracker.
type SpeedTracker struct {
	codes        []string
	window       time.Duration
	thresholdPct float64
	store        statestore.Store
	log          *zap.Logger

	history map[string][]sample
}

func NewSpeedTracker(codes []string, window time.Duration, thresholdPct float64,
	store statestore.Store, log *zap.Logger) *SpeedTracker {
	return &SpeedTracker{
		codes:        codes,
		window:       window,
		thresholdPct: thresholdPct,
		store:        store,
		log:          log,
		history:      make(map[string][]sample),
	}
}

// Poll records the current price of every watched instrument, evicts stale
// window samples, and returns one event per instrument newly entering a
// fast state.
func (t *SpeedTracker) Poll(now time.Time, snap *snapshot.Snapshot) []Event {
	if len(t.codes) == 0 {
		return nil
	}

	records, missing := snap.Subset(t.codes)
	if len(missing) > 0 {
		t.log.Warn("speed watch codes missing from snapshot",
			zap.String("codes", strings.Join(missing, ",")))
	}
	if len(records) == 0 {
		return nil
	}

	state, err := t.store.Get(speedStateKey)
	if err != nil {
		t.log.Error("failed to load speed state, treating all as NORMAL", zap.Error(err))
		state = make(map[string]string)
	}

	var events []Event
	changed := false
	for _, rec := range records {
		if rec.Price == nil || *rec.Price <= 0 {
			continue
		}
		price := *rec.Price

		changePct, ok := t.observe(rec.Code, now, price)
		if !ok {
			continue // fewer than 2 samples retained, no decision yet
		}

		cur := t.classify(changePct)
		last := state[rec.Code]
		if last == "" {
			last = StatusNormal
		}

		if cur != last && (cur == StatusFastUp || cur == StatusFastDown) {
			kind := FastUpStarted
			if cur == StatusFastDown {
				kind = FastDownStarted
			}
			events = append(events, Event{
				Kind:          kind,
				Code:          rec.Code,
				Name:          rec.Name,
				Price:         &price,
				PctChange:     &changePct,
				WindowMinutes: t.window.Minutes(),
				Time:          now,
			})
		}

		if state[rec.Code] != cur {
			state[rec.Code] = cur
			changed = true
		}
	}

	if changed {
		if err := t.store.Set(speedStateKey, state); err != nil {
			t.log.Error("failed to persist speed state", zap.Error(err))
		}
	}
	return events
}

// observe appends (now, price) to the code's window, drops samples older
// than the window relative to now, and returns the percent change from the
// oldest retained sample to the latest.
func (t *SpeedTracker) observe(code string, now time.Time, price float64) (float64, bool) {
	h := append(t.history[code], sample{ts: now, price: price})

	keep := 0
	for keep < len(h) && now.Sub(h[keep].ts) > t.window {
		keep++
	}
	h = h[:copy(h, h[keep:])]
	t.history[code] = h

	if len(h) < 2 {
		return 0, false
	}
	base := h[0]
	if base.price == 0 {
		return 0, false
	}
	return (price - base.price) / base.price * 100.0, true
}

func (t *SpeedTracker) classify(changePct float64) string {
	switch {
	case changePct >= t.thresholdPct:
		return StatusFastUp
	case changePct <= -t.thresholdPct:
		return StatusFastDown
	}
	return StatusNormal
}

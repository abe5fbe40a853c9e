package monitor

import (
	"strings"
	"time"

	"watchdog/internal/watchdog/snapshot"
	"watchdog/internal/watchdog/statestore"

	"go.uber.org/zap"
)

const limitStateKey = "limit"

// LimitTracker is a per-instrument state machine over
// NORMAL / LIMIT_UP / LIMIT_DOWN. It alerts only on transitions: entering a
// limit state ("limit hit") or leaving one back to NORMAL ("open board").
// The persisted status map is the sole source of truth for the last known
// state, so an instrument that stays pinned at its limit across polls never
// re-alerts.
type LimitTracker struct {
	codes    []string
	limitPct float64
	store    statestore.Store
	log      *zap.Logger
}

func NewLimitTracker(codes []string, limitPct float64, store statestore.Store, log *zap.Logger) *LimitTracker {
	return &LimitTracker{
		codes:    codes,
		limitPct: limitPct,
		store:    store,
		log:      log,
	}
}

// Poll classifies every watched instrument in the snapshot and returns one
// event per state transition. Instruments with insufficient data are skipped
// with their persisted status left untouched. An empty watch-list is a no-op.
func (t *LimitTracker) Poll(now time.Time, snap *snapshot.Snapshot) []Event {
	if len(t.codes) == 0 {
		return nil
	}

	records, missing := snap.Subset(t.codes)
	if len(missing) > 0 {
		t.log.Warn("limit watch codes missing from snapshot",
			zap.String("codes", strings.Join(missing, ",")))
	}
	if len(records) == 0 {
		return nil
	}

	state, err := t.store.Get(limitStateKey)
	if err != nil {
		t.log.Error("failed to load limit state, treating all as NORMAL", zap.Error(err))
		state = make(map[string]string)
	}

	var events []Event
	changed := false
	for _, rec := range records {
		cur, ok := t.status(rec)
		if !ok {
			continue // insufficient data this poll
		}

		last := state[rec.Code]
		if last == "" {
			last = StatusNormal
		}

		if cur != last {
			if ev, ok := transitionEvent(last, cur, rec, now); ok {
				events = append(events, ev)
			}
			state[rec.Code] = cur
			changed = true
		}
	}

	if changed {
		if err := t.store.Set(limitStateKey, state); err != nil {
			t.log.Error("failed to persist limit state", zap.Error(err))
		}
	}
	return events
}

// status derives the instrument's limit status. Percent change wins when
// available; otherwise the price is compared against explicit limit bounds;
// otherwise there is no decision (ok=false).
func (t *LimitTracker) status(rec snapshot.Record) (string, bool) {
	if pct := rec.ChangePct(); pct != nil {
		switch {
		case *pct >= t.limitPct:
			return StatusLimitUp, true
		case *pct <= -t.limitPct:
			return StatusLimitDown, true
		}
		return StatusNormal, true
	}

	if rec.Price != nil && (rec.LimitUp != nil || rec.LimitDown != nil) {
		switch {
		case rec.LimitUp != nil && *rec.Price >= *rec.LimitUp:
			return StatusLimitUp, true
		case rec.LimitDown != nil && *rec.Price <= *rec.LimitDown:
			return StatusLimitDown, true
		}
		return StatusNormal, true
	}

	return "", false
}

func transitionEvent(last, cur string, rec snapshot.Record, now time.Time) (Event, bool) {
	ev := Event{
		Code:      rec.Code,
		Name:      rec.Name,
		Price:     rec.Price,
		PctChange: rec.ChangePct(),
		Time:      now,
	}

	switch {
	case cur == StatusLimitUp:
		ev.Kind = LimitUpHit
	case cur == StatusLimitDown:
		ev.Kind = LimitDownHit
	case last == StatusLimitUp && cur == StatusNormal:
		ev.Kind = LimitUpOpened
	case last == StatusLimitDown && cur == StatusNormal:
		ev.Kind = LimitDownOpened
	default:
		return Event{}, false
	}
	return ev, true
}

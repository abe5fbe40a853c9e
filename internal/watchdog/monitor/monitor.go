// Package monitor turns normalized market snapshots into alert events by
// tracking per-instrument state across polls.
package monitor

import (
	"context"
	"errors"
	"time"

	"watchdog/internal/watchdog/alert"
	"watchdog/internal/watchdog/snapshot"

	"go.uber.org/zap"
)

// SnapshotSource supplies one raw market snapshot per poll.
type SnapshotSource interface {
	FundSpot(ctx context.Context) (*snapshot.Table, error)
}

// Monitor runs both trackers against a single snapshot per poll and hands
// the resulting events to the alert sink. All recoverable failures are
// logged and swallowed so one bad poll never aborts the schedule.
type Monitor struct {
	source SnapshotSource
	sink   alert.Sink
	limit  *LimitTracker
	speed  *SpeedTracker
	log    *zap.Logger
	now    func() time.Time
}

func New(source SnapshotSource, sink alert.Sink, limit *LimitTracker, speed *SpeedTracker, log *zap.Logger) *Monitor {
	return &Monitor{
		source: source,
		sink:   sink,
		limit:  limit,
		speed:  speed,
		log:    log,
		now:    time.Now,
	}
}

// RunOnce pulls one snapshot, normalizes it, polls both trackers and
// delivers every event. Returns the events it attempted to deliver.
func (m *Monitor) RunOnce(ctx context.Context) []Event {
	table, err := m.source.FundSpot(ctx)
	if err != nil {
		m.log.Warn("snapshot fetch failed, skipping poll", zap.Error(err))
		return nil
	}

	snap, err := snapshot.Normalize(table)
	if err != nil {
		if errors.Is(err, snapshot.ErrNoData) {
			m.log.Info("no usable snapshot data, skipping poll")
		} else {
			m.log.Warn("snapshot normalization failed, skipping poll", zap.Error(err))
		}
		return nil
	}

	now := m.now()
	var events []Event
	events = append(events, m.limit.Poll(now, snap)...)
	events = append(events, m.speed.Poll(now, snap)...)

	for _, ev := range events {
		if err := m.sink.Send(ctx, ev.Message()); err != nil {
			m.log.Warn("alert delivery failed",
				zap.String("kind", string(ev.Kind)),
				zap.String("code", ev.Code),
				zap.Error(err))
		}
	}

	if len(events) > 0 {
		m.log.Info("monitor poll finished", zap.Int("events", len(events)))
	}
	return events
}

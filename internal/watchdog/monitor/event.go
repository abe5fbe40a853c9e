package monitor

import (
	"fmt"
	"strings"
	"time"
)

// Instrument status values as persisted in the state store.
const (
	StatusNormal    = "NORMAL"
	StatusLimitUp   = "LIMIT_UP"
	StatusLimitDown = "LIMIT_DOWN"
	StatusFastUp    = "FAST_UP"
	StatusFastDown  = "FAST_DOWN"
)

// EventKind labels a state transition worth alerting on.
type EventKind string

const (
	LimitUpHit      EventKind = "LIMIT_UP_HIT"
	LimitDownHit    EventKind = "LIMIT_DOWN_HIT"
	LimitUpOpened   EventKind = "LIMIT_UP_OPENED"
	LimitDownOpened EventKind = "LIMIT_DOWN_OPENED"
	FastUpStarted   EventKind = "FAST_UP_STARTED"
	FastDownStarted EventKind = "FAST_DOWN_STARTED"
)

// Event is one alert-worthy transition. Exactly one event is produced per
// transition, and each renders exactly one sink message.
type Event struct {
	Kind      EventKind
	Code      string
	Name      string
	Price     *float64
	PctChange *float64
	// WindowMinutes is set on speed events only.
	WindowMinutes float64
	Time          time.Time
}

var eventTitles = map[EventKind]string{
	LimitUpHit:      "Limit-up hit",
	LimitDownHit:    "Limit-down hit",
	LimitUpOpened:   "Opened from limit-up",
	LimitDownOpened: "Opened from limit-down",
	FastUpStarted:   "Fast surge up",
	FastDownStarted: "Fast surge down",
}

// Message renders the event as a single human-readable alert text.
func (e Event) Message() string {
	lines := []string{
		eventTitles[e.Kind],
		"Time: " + e.Time.Format("2006-01-02 15:04:05"),
		"Code: " + e.Code,
	}
	if e.Name != "" {
		lines = append(lines, "Name: "+e.Name)
	}
	if e.WindowMinutes > 0 {
		lines = append(lines, fmt.Sprintf("Window: %.1f min", e.WindowMinutes))
	}
	if e.Price != nil {
		lines = append(lines, fmt.Sprintf("Price: %.3f", *e.Price))
	}
	if e.PctChange != nil {
		lines = append(lines, fmt.Sprintf("Change: %.2f%%", *e.PctChange))
	}
	return strings.Join(lines, "\n")
}

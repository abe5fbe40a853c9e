// Package rollover computes index-futures rollover signals: the point where
// trading activity migrates from the near-expiry contract to the next month.
package rollover

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"watchdog/internal/watchdog/calendar"

	"go.uber.org/zap"
)

// Quote is the traded volume and open interest of one futures contract.
type Quote struct {
	Volume       int64
	OpenInterest int64
}

// QuoteSource supplies contract quotes. Implementations own their fallback
// chain; the checker only degrades to zeros when nothing could be fetched.
type QuoteSource interface {
	FuturesQuote(ctx context.Context, code string) (Quote, error)
}

// RecordStore persists one check record per (contract type, date),
// overwriting on repeat.
type RecordStore interface {
	UpsertRollover(ctx context.Context, rec Record) error
}

// Record is one rollover decision, idempotently keyed by contract type and
// check date.
type Record struct {
	ContractType     string
	CheckDate        time.Time
	MainContract     string
	MainVolume       int64
	MainOpenInterest int64
	NextContract     string
	NextVolume       int64
	NextOpenInterest int64
	VolumeRatio      float64
	OIRatio          float64
	Signal           bool
	Reason           string
}

// Signal is the outcome of evaluating one contract pair.
type Signal struct {
	VolumeRatio float64
	OIRatio     float64
	Triggered   bool
	Reason      string
}

const nearExpiryDays = 10

// Checker runs the rollover evaluation for a set of contract families.
type Checker struct {
	types  []string
	quotes QuoteSource
	store  RecordStore
	log    *zap.Logger
	now    func() time.Time
}

func NewChecker(types []string, quotes QuoteSource, store RecordStore, log *zap.Logger) *Checker {
	return &Checker{
		types:  types,
		quotes: quotes,
		store:  store,
		log:    log,
		now:    time.Now,
	}
}

// RunOnce evaluates every contract family for today and persists one record
// each. Weekends produce nothing. Returns the number of records written.
func (c *Checker) RunOnce(ctx context.Context) int {
	today := c.now()
	if wd := today.Weekday(); wd == time.Saturday || wd == time.Sunday {
		c.log.Info("rollover check skipped, weekend")
		return 0
	}

	processed := 0
	for _, ctype := range c.types {
		mainCode, nextCode := ContractCodes(ctype, today)
		c.log.Info("rollover check",
			zap.String("type", ctype),
			zap.String("main", mainCode),
			zap.String("next", nextCode))

		mainQ := c.quote(ctx, mainCode)
		nextQ := c.quote(ctx, nextCode)

		sig := Evaluate(mainQ, nextQ, today)
		rec := Record{
			ContractType:     ctype,
			CheckDate:        time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC),
			MainContract:     mainCode,
			MainVolume:       mainQ.Volume,
			MainOpenInterest: mainQ.OpenInterest,
			NextContract:     nextCode,
			NextVolume:       nextQ.Volume,
			NextOpenInterest: nextQ.OpenInterest,
			VolumeRatio:      sig.VolumeRatio,
			OIRatio:          sig.OIRatio,
			Signal:           sig.Triggered,
			Reason:           sig.Reason,
		}

		if err := c.store.UpsertRollover(ctx, rec); err != nil {
			c.log.Error("failed to persist rollover record",
				zap.String("type", ctype), zap.Error(err))
			continue
		}
		c.log.Info("rollover result",
			zap.String("type", ctype),
			zap.Bool("signal", sig.Triggered),
			zap.String("reason", sig.Reason))
		processed++
	}
	return processed
}

func (c *Checker) quote(ctx context.Context, code string) Quote {
	q, err := c.quotes.FuturesQuote(ctx, code)
	if err != nil {
		c.log.Warn("no quote data, using zeros", zap.String("contract", code), zap.Error(err))
		return Quote{}
	}
	return q
}

// ContractCodes returns the main and next contract codes for a family.
// A contract expires on the 3rd Friday of its delivery month; once today is
// past this month's 3rd Friday the main contract rolls to next month. The
// next contract is always one calendar month after main. Codes are formatted
// as {TYPE}{YY}{MM}, e.g. IC2602.
func ContractCodes(ctype string, today time.Time) (mainCode, nextCode string) {
	expiry := calendar.NthWeekday(today.Year(), today.Month(), time.Friday, 3)

	mainMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	if today.Day() > expiry.Day() {
		mainMonth = mainMonth.AddDate(0, 1, 0)
	}
	nextMonth := mainMonth.AddDate(0, 1, 0)

	return formatContract(ctype, mainMonth), formatContract(ctype, nextMonth)
}

func formatContract(ctype string, month time.Time) string {
	return fmt.Sprintf("%s%02d%02d", ctype, month.Year()%100, int(month.Month()))
}

// Evaluate applies the signal tiers to a main/next quote pair. Tiers are
// checked in order and the first match wins; within 10 days of expiry a
// near-expiry context reason is always appended and, when no tier matched,
// either ratio above 0.8 still forces the signal.
func Evaluate(mainQ, nextQ Quote, today time.Time) Signal {
	vRatio := ratio(nextQ.Volume, mainQ.Volume)
	oRatio := ratio(nextQ.OpenInterest, mainQ.OpenInterest)

	triggered := false
	var reasons []string

	switch {
	case vRatio > 1.5 && oRatio > 1.5:
		triggered = true
		reasons = append(reasons,
			fmt.Sprintf("strong: volume ratio %.2f>1.5, oi ratio %.2f>1.5", vRatio, oRatio))
	case vRatio > 1.0 && oRatio > 1.0:
		triggered = true
		reasons = append(reasons,
			fmt.Sprintf("medium: volume ratio %.2f>1.0, oi ratio %.2f>1.0", vRatio, oRatio))
	case vRatio > 2.0:
		triggered = true
		reasons = append(reasons, fmt.Sprintf("volume-only: volume ratio %.2f>2.0", vRatio))
	}

	expiry := calendar.NthWeekday(today.Year(), today.Month(), time.Friday, 3)
	daysLeft := expiry.Day() - today.Day()
	if daysLeft > 0 && daysLeft <= nearExpiryDays {
		reasons = append(reasons,
			fmt.Sprintf("near expiry (%d days, expiry %s)", daysLeft, expiry.Format("2006-01-02")))
		if !triggered && (vRatio > 0.8 || oRatio > 0.8) {
			triggered = true
			reasons = append(reasons, "near-expiry escalation triggered")
		}
	}

	if len(reasons) == 0 {
		reasons = append(reasons,
			fmt.Sprintf("not triggered: volume ratio %.2f, oi ratio %.2f", vRatio, oRatio))
	}

	return Signal{
		VolumeRatio: vRatio,
		OIRatio:     oRatio,
		Triggered:   triggered,
		Reason:      strings.Join(reasons, "; "),
	}
}

// ratio is next/main rounded to 4 decimals, 0 when main is 0.
func ratio(next, main int64) float64 {
	if main <= 0 {
		return 0
	}
	return math.Round(float64(next)/float64(main)*10000) / 10000
}

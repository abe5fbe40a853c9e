package calendar

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Market identifies which calendar rules apply.
type Market string

const (
	// MarketCNA is the mainland A-share market, backed by a fetched day list.
	MarketCNA Market = "cn-a"
	// MarketUS is the US market, computed from closed-form holiday rules.
	MarketUS Market = "us"
)

// DateSource supplies the full trading-day list for MarketCNA in one call.
type DateSource interface {
	TradingDates(ctx context.Context) ([]time.Time, error)
}

const (
	refreshInterval = 7 * 24 * time.Hour
	recentLookback  = 30 // calendar days RecentTradingDays walks back
)

// Service answers "is this date a trading day" per market. MarketCNA runs
// off a cached day set refreshed at most weekly; MarketUS needs no network
// access at all. When the day set cannot be loaded the service fails open:
// a missed alert poll costs more than a redundant one.
type Service struct {
	source DateSource
	log    *zap.Logger
	now    func() time.Time

	mu          sync.Mutex
	days        map[string]struct{}
	lastRefresh time.Time
}

func NewService(source DateSource, log *zap.Logger) *Service {
	return &Service{
		source: source,
		log:    log,
		now:    time.Now,
	}
}

// IsTradingDay reports whether d is a trading day for the market. Weekends
// short-circuit without touching the cache or the network.
func (s *Service) IsTradingDay(ctx context.Context, market Market, d time.Time) bool {
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}

	switch market {
	case MarketUS:
		return !isUSMarketHoliday(d)
	default:
		return s.isCNATradingDay(ctx, d)
	}
}

func (s *Service) isCNATradingDay(ctx context.Context, d time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshLocked(ctx)
	if len(s.days) == 0 {
		s.log.Warn("trading calendar unavailable, assuming trading day")
		return true
	}

	_, ok := s.days[dateKey(d)]
	return ok
}

// RecentTradingDays walks backward from today over at most 30 calendar days
// and returns up to count trading days, most recent first. Empty when the
// day set could not be loaded.
func (s *Service) RecentTradingDays(ctx context.Context, count int) []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshLocked(ctx)
	if len(s.days) == 0 {
		return nil
	}

	var out []time.Time
	d := s.now()
	for i := 0; i < recentLookback && len(out) < count; i++ {
		if _, ok := s.days[dateKey(d)]; ok {
			out = append(out, time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC))
		}
		d = d.AddDate(0, 0, -1)
	}
	return out
}

// refreshLocked reloads the day set when it is empty or older than a week.
// Fetch failures keep whatever set is already cached.
func (s *Service) refreshLocked(ctx context.Context) {
	if len(s.days) > 0 && s.now().Sub(s.lastRefresh) < refreshInterval {
		return
	}

	dates, err := s.source.TradingDates(ctx)
	if err != nil {
		s.log.Warn("failed to load trading calendar", zap.Error(err))
		return
	}
	if len(dates) == 0 {
		s.log.Warn("trading calendar fetch returned no dates")
		return
	}

	days := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		days[dateKey(d)] = struct{}{}
	}
	s.days = days
	s.lastRefresh = s.now()
	s.log.Info("trading calendar loaded", zap.Int("days", len(days)))
}

func dateKey(d time.Time) string {
	return d.Format("2006-01-02")
}

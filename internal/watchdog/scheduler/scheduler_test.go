package scheduler

import (
	"context"
	"testing"
	"time"

	"watchdog/internal/watchdog/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

type emptySource struct{}

func (emptySource) TradingDates(ctx context.Context) ([]time.Time, error) {
	return nil, nil
}

func TestRegisterInvalidSpec(t *testing.T) {
	s := New(calendar.NewService(emptySource{}, zap.NewNop()), zap.NewNop())
	err := s.Register("bad", "not a cron spec", calendar.MarketCNA, false, func(context.Context) {})
	assert.Error(t, err)
}

func TestRegisteredJobRuns(t *testing.T) {
	s := New(calendar.NewService(emptySource{}, zap.NewNop()), zap.NewNop())

	fired := make(chan struct{}, 1)
	err := s.Register("tick", "@every 50ms", calendar.MarketCNA, false, func(context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"watchdog/config"
	"watchdog/internal/watchdog/alert"
	"watchdog/internal/watchdog/calendar"
	"watchdog/internal/watchdog/monitor"
	"watchdog/internal/watchdog/rollover"
	"watchdog/internal/watchdog/scheduler"
	"watchdog/internal/watchdog/statestore"
	"watchdog/logger"
	"watchdog/pkg/eastmoney"
	"watchdog/pkg/storage/postgres"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	// data source + calendar
	em := eastmoney.NewRESTClient(
		cfg.Eastmoney.BaseURL,
		cfg.Eastmoney.FallbackURL,
		cfg.Eastmoney.CalendarURL,
		cfg.Eastmoney.Timeout,
		log,
	)
	cal := calendar.NewService(em, log)

	// Postgres is optional: without it the rollover job is disabled and
	// state falls back to the file backend.
	var pg *postgres.PostgresClient
	if cfg.Postgres.Host != "" {
		pg, err = postgres.InitializeAndMigrate(cfg.Postgres, cfg.Log.Environment, true)
		if err != nil {
			log.Fatal("failed to connect to DB", zap.Error(err))
		}
		defer pg.Close()
	}

	var store statestore.Store
	if cfg.State.Backend == "postgres" && pg != nil {
		store = pg.StateStore()
	} else {
		store = statestore.NewFileStore(cfg.State.File, log)
	}

	sink := alert.NewDingTalk(cfg.Alert.Webhook, cfg.Alert.Secret, cfg.Alert.Timeout, log)

	limitCodes := loadWatchlist(cfg.Monitor.LimitCodesFile, log)
	speedCodes := loadWatchlist(cfg.Monitor.SpeedCodesFile, log)

	mon := monitor.New(
		em,
		sink,
		monitor.NewLimitTracker(limitCodes, cfg.Monitor.LimitPct, store, log),
		monitor.NewSpeedTracker(
			speedCodes,
			minutes(cfg.Monitor.SpeedWindowMinutes),
			cfg.Monitor.SpeedThresholdPct,
			store,
			log,
		),
		log,
	)

	sched := scheduler.New(cal, log)
	err = sched.Register("lof-monitor", cfg.Monitor.PollCron, calendar.MarketCNA, true,
		func(ctx context.Context) { mon.RunOnce(ctx) })
	if err != nil {
		log.Fatal("failed to register monitor job", zap.Error(err))
	}

	if pg != nil {
		checker := rollover.NewChecker(cfg.Rollover.ContractTypes, em, pg, log)
		err = sched.Register("futures-rollover", cfg.Rollover.CheckCron, calendar.MarketCNA, false,
			func(ctx context.Context) { checker.RunOnce(ctx) })
		if err != nil {
			log.Fatal("failed to register rollover job", zap.Error(err))
		}
	} else {
		log.Warn("postgres not configured, rollover check disabled")
	}

	sched.Start()
	log.Info("watchdog started",
		zap.Int("limit_codes", len(limitCodes)),
		zap.Int("speed_codes", len(speedCodes)))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	sched.Stop()
}

// loadWatchlist reads a codes file; a missing or unreadable file logs a
// warning and yields an empty watch-list (the tracker becomes a no-op).
func loadWatchlist(path string, log *zap.Logger) []string {
	codes, err := config.LoadWatchlist(path)
	if err != nil {
		log.Warn("watch-list not loaded", zap.String("path", path), zap.Error(err))
		return nil
	}
	return codes
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

package postgres_test

import (
	"context"
	"testing"
	"time"

	"watchdog/config"
	"watchdog/internal/watchdog/rollover"
	"watchdog/pkg/storage/postgres"
)

func testClient(t *testing.T) *postgres.PostgresClient {
	t.Helper()

	cfg := config.PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "yourpw",
		DBName:   "watchdog",
		SSLMode:  "disable",
		TimeZone: "UTC",
	}

	client, err := postgres.NewClient(cfg.DSN("dev"))
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if !client.IsHealthy(ctx) {
		t.Skip("postgres not reachable")
	}

	if err := client.AutoMigrate(); err != nil {
		t.Fatalf("auto migration failed: %v", err)
	}
	return client
}

// go test -v --run TestRolloverUpsert
func TestRolloverUpsert(t *testing.T) {
	client := testClient(t)
	defer client.Close()

	ctx := context.Background()
	checkDate := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)

	rec := rollover.Record{
		ContractType:     "IC",
		CheckDate:        checkDate,
		MainContract:     "IC2403",
		MainVolume:       100,
		MainOpenInterest: 100,
		NextContract:     "IC2404",
		NextVolume:       160,
		NextOpenInterest: 160,
		VolumeRatio:      1.6,
		OIRatio:          1.6,
		Signal:           true,
		Reason:           "strong: volume ratio 1.60>1.5, oi ratio 1.60>1.5",
	}
	if err := client.UpsertRollover(ctx, rec); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, err := client.GetRollover(ctx, "IC", checkDate)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.MainContract != "IC2403" || !got.RolloverSignal {
		t.Errorf("unexpected record: %+v", got)
	}

	// Re-running the same day overwrites instead of duplicating.
	rec.NextVolume = 50
	rec.VolumeRatio = 0.5
	rec.Signal = false
	rec.Reason = "not triggered: volume ratio 0.50, oi ratio 1.60"
	if err := client.UpsertRollover(ctx, rec); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	updated, err := client.GetRollover(ctx, "IC", checkDate)
	if err != nil {
		t.Fatalf("get after upsert failed: %v", err)
	}
	if updated.NextVolume != 50 || updated.RolloverSignal {
		t.Errorf("record was not overwritten: %+v", updated)
	}

	if err := client.DeleteOldRollovers(ctx, checkDate.Add(24*time.Hour)); err != nil {
		t.Errorf("delete failed: %v", err)
	}
	if _, err := client.GetRollover(ctx, "IC", checkDate); err == nil {
		t.Error("expected error after delete, got nil")
	}
}

// go test -v --run TestStateStoreRoundtrip
func TestStateStoreRoundtrip(t *testing.T) {
	client := testClient(t)
	defer client.Close()

	store := client.StateStore()
	if err := store.Set("limit", map[string]string{"161725": "LIMIT_UP"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := store.Get("limit")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got["161725"] != "LIMIT_UP" {
		t.Errorf("unexpected state: %v", got)
	}

	// Overwrite the same key.
	if err := store.Set("limit", map[string]string{"161725": "NORMAL"}); err != nil {
		t.Fatalf("second set failed: %v", err)
	}
	got, err = store.Get("limit")
	if err != nil {
		t.Fatalf("get after set failed: %v", err)
	}
	if got["161725"] != "NORMAL" {
		t.Errorf("state was not overwritten: %v", got)
	}

	// Missing keys come back as an empty map.
	empty, err := store.Get("never-written")
	if err != nil {
		t.Fatalf("get missing key failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty state, got %v", empty)
	}
}

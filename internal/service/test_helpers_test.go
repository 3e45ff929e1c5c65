package service_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/saadjs/kcal-planner/internal/db"
	"github.com/saadjs/kcal-planner/internal/planner"
	"github.com/saadjs/kcal-planner/internal/service"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kcal.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return sqldb
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }

func boolPtr(v bool) *bool { return &v }

// seedPlanner stores a 70 kg / 170 cm / 30 y male profile, whose computed
// target applies from 2026-09-01, and the default catalog.
func seedPlanner(t *testing.T, sqldb *sql.DB) {
	t.Helper()
	if _, err := service.SetProfile(sqldb, service.ProfileInput{
		Weight:        floatPtr(70),
		HeightCm:      floatPtr(170),
		Sex:           "male",
		Age:           intPtr(30),
		Goal:          "maintain",
		FitnessLevel:  "intermediate",
		MealsPerDay:   3,
		EffectiveDate: "2026-09-01",
	}, planner.DefaultEnergyConfig()); err != nil {
		t.Fatalf("set profile: %v", err)
	}
	if _, err := service.SeedDefaultCatalog(sqldb); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
}

func generate(t *testing.T, sqldb *sql.DB, seed int64, now time.Time) service.GeneratePlanResult {
	t.Helper()
	res, err := service.GeneratePlan(context.Background(), sqldb, service.GeneratePlanInput{
		Config: planner.DefaultConfig(),
		Seed:   int64Ptr(seed),
		Now:    now,
	})
	if err != nil {
		t.Fatalf("generate plan: %v", err)
	}
	return res
}

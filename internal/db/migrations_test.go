package db_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/saadjs/kcal-planner/internal/db"
)

func TestApplyMigrationsIdempotentAndSeedsDefaults(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "kcal.db")
	sqldb, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("first apply migrations: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("second apply migrations: %v", err)
	}

	var migrationCount int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&migrationCount); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if migrationCount != 4 {
		t.Fatalf("expected 4 migration versions, got %d", migrationCount)
	}

	for _, table := range []string{"profile", "body_measurements", "macro_targets", "app_config", "foods", "plans", "plan_days", "plan_meals", "plan_allocations", "regeneration_requests"} {
		var count int
		if err := sqldb.QueryRow(`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&count); err != nil {
			t.Fatalf("check %s table: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("expected %s table to exist", table)
		}
	}

	for _, col := range []string{"calculated_calories", "calculated_protein", "calculated_carbs", "calculated_fat", "quantity_unit"} {
		var count int
		if err := sqldb.QueryRow(`SELECT COUNT(1) FROM pragma_table_info('plan_allocations') WHERE name = ?`, col).Scan(&count); err != nil {
			t.Fatalf("check plan_allocations.%s: %v", col, err)
		}
		if count != 1 {
			t.Fatalf("expected %s column in plan_allocations", col)
		}
	}

	var autoRegenerate string
	if err := sqldb.QueryRow(`SELECT value FROM app_config WHERE key = 'auto_regenerate'`).Scan(&autoRegenerate); err != nil {
		t.Fatalf("read seeded config: %v", err)
	}
	if autoRegenerate != "false" {
		t.Fatalf("expected auto_regenerate=false, got %q", autoRegenerate)
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected db file to exist: %v", err)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	t.Parallel()

	sqldb, err := db.Open(filepath.Join(t.TempDir(), "kcal.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	_, err = sqldb.Exec(`INSERT INTO plan_days(plan_id, day_number, day_name, calories, protein_g, carbs_g, fat_g,
realized_calories, realized_protein_g, realized_carbs_g, realized_fat_g, scale_factor, deviation_pct)
VALUES('missing', 1, 'Monday', 2000, 100, 200, 60, 0, 0, 0, 0, 1, 0)`)
	if err == nil {
		t.Fatalf("expected foreign key violation for dangling plan id")
	}
}

package db

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS profile (
  id INTEGER PRIMARY KEY CHECK(id = 1),
  weight_kg REAL CHECK(weight_kg > 0),
  height_cm REAL CHECK(height_cm > 0),
  sex TEXT NOT NULL CHECK(sex IN ('male', 'female')),
  age INTEGER CHECK(age > 0),
  body_fat_pct REAL CHECK(body_fat_pct > 0 AND body_fat_pct < 100),
  muscle_pct REAL CHECK(muscle_pct > 0 AND muscle_pct < 100),
  goal TEXT NOT NULL CHECK(goal IN ('reduce_fat', 'gain_muscle', 'maintain')),
  fitness_level TEXT NOT NULL CHECK(fitness_level IN ('beginner', 'intermediate', 'advanced')),
  meals_per_day INTEGER NOT NULL DEFAULT 3 CHECK(meals_per_day BETWEEN 1 AND 6),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS body_measurements (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  measured_at DATETIME NOT NULL,
  weight_kg REAL NOT NULL CHECK(weight_kg > 0),
  body_fat_pct REAL CHECK(body_fat_pct > 0 AND body_fat_pct < 100),
  muscle_pct REAL CHECK(muscle_pct > 0 AND muscle_pct < 100),
  waist_cm REAL CHECK(waist_cm > 0),
  hip_cm REAL CHECK(hip_cm > 0),
  chest_cm REAL CHECK(chest_cm > 0),
  arm_cm REAL CHECK(arm_cm > 0),
  thigh_cm REAL CHECK(thigh_cm > 0),
  notes TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_body_measurements_measured_at ON body_measurements(measured_at);

CREATE TABLE IF NOT EXISTS macro_targets (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  calories INTEGER NOT NULL CHECK(calories >= 0),
  protein_g REAL NOT NULL CHECK(protein_g >= 0),
  carbs_g REAL NOT NULL CHECK(carbs_g >= 0),
  fat_g REAL NOT NULL CHECK(fat_g >= 0),
  ree REAL,
  tdee REAL,
  formula TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT 'manual' CHECK(source IN ('manual', 'computed', 'checkin')),
  effective_date TEXT NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(effective_date)
);

CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
	{
		version: 2,
		name:    "foods",
		sql: `
CREATE TABLE IF NOT EXISTS foods (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL CHECK(category IN ('protein', 'fat', 'nuts', 'dairy_high_fat', 'carbohydrate', 'cereal', 'legume', 'vegetable', 'fruit')),
  quantity_type TEXT NOT NULL CHECK(quantity_type IN ('grams', 'units')),
  calories REAL NOT NULL CHECK(calories >= 0),
  protein_g REAL NOT NULL CHECK(protein_g >= 0),
  carbs_g REAL NOT NULL CHECK(carbs_g >= 0),
  fat_g REAL NOT NULL CHECK(fat_g >= 0),
  source TEXT NOT NULL DEFAULT 'manual',
  source_ref TEXT NOT NULL DEFAULT '',
  is_complete INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_foods_category ON foods(category);
`,
	},
	{
		version: 3,
		name:    "plans",
		sql: `
CREATE TABLE IF NOT EXISTS plans (
  id TEXT PRIMARY KEY,
  status TEXT NOT NULL CHECK(status IN ('active', 'superseded')),
  seed INTEGER NOT NULL,
  meals_per_day INTEGER NOT NULL CHECK(meals_per_day BETWEEN 1 AND 6),
  calories INTEGER NOT NULL,
  protein_g REAL NOT NULL,
  carbs_g REAL NOT NULL,
  fat_g REAL NOT NULL,
  ree REAL NOT NULL,
  tdee REAL NOT NULL,
  formula TEXT NOT NULL,
  week_start TEXT NOT NULL,
  reason TEXT NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL,
  superseded_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_plans_status ON plans(status);

CREATE TABLE IF NOT EXISTS plan_days (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  plan_id TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
  day_number INTEGER NOT NULL CHECK(day_number BETWEEN 1 AND 7),
  day_name TEXT NOT NULL,
  calories INTEGER NOT NULL,
  protein_g REAL NOT NULL,
  carbs_g REAL NOT NULL,
  fat_g REAL NOT NULL,
  realized_calories REAL NOT NULL,
  realized_protein_g REAL NOT NULL,
  realized_carbs_g REAL NOT NULL,
  realized_fat_g REAL NOT NULL,
  scale_factor REAL NOT NULL,
  factor_clamped INTEGER NOT NULL DEFAULT 0,
  deviation_pct REAL NOT NULL,
  within_tolerance INTEGER NOT NULL DEFAULT 0,
  UNIQUE(plan_id, day_number)
);

CREATE TABLE IF NOT EXISTS plan_meals (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  plan_day_id INTEGER NOT NULL REFERENCES plan_days(id) ON DELETE CASCADE,
  meal_index INTEGER NOT NULL CHECK(meal_index >= 0),
  name TEXT NOT NULL,
  UNIQUE(plan_day_id, meal_index)
);

CREATE TABLE IF NOT EXISTS plan_allocations (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  plan_meal_id INTEGER NOT NULL REFERENCES plan_meals(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  food_id TEXT NOT NULL,
  food_name TEXT NOT NULL,
  category TEXT NOT NULL,
  quantity REAL NOT NULL CHECK(quantity > 0),
  quantity_unit TEXT NOT NULL CHECK(quantity_unit IN ('grams', 'units')),
  calculated_calories REAL NOT NULL,
  calculated_protein REAL NOT NULL,
  calculated_carbs REAL NOT NULL,
  calculated_fat REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_plan_allocations_food_id ON plan_allocations(food_id);
`,
	},
	{
		version: 4,
		name:    "regeneration_requests",
		sql: `
CREATE TABLE IF NOT EXISTS regeneration_requests (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  effective_from TEXT NOT NULL,
  calories INTEGER NOT NULL,
  protein_g REAL NOT NULL,
  carbs_g REAL NOT NULL,
  fat_g REAL NOT NULL,
  reason TEXT NOT NULL,
  measurement_id INTEGER REFERENCES body_measurements(id),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  consumed_at DATETIME,
  plan_id TEXT REFERENCES plans(id)
);

CREATE INDEX IF NOT EXISTS idx_regeneration_requests_pending ON regeneration_requests(consumed_at);
`,
	},
}

var defaultConfig = map[string]string{
	"auto_regenerate": "false",
}

func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}

	for key, value := range defaultConfig {
		if _, err := db.Exec(`INSERT OR IGNORE INTO app_config(key, value) VALUES(?, ?)`, key, value); err != nil {
			return fmt.Errorf("seed default config %s: %w", key, err)
		}
	}

	return nil
}

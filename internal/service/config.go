package service

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

const (
	ConfigAutoRegenerate = "auto_regenerate"
	ConfigTolerancePct   = "tolerance_pct"
	ConfigPlanSeed       = "plan_seed"
)

var knownConfigKeys = map[string]func(string) error{
	ConfigAutoRegenerate: func(v string) error {
		_, err := strconv.ParseBool(v)
		return err
	},
	ConfigTolerancePct: func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		if f <= 0 || f > 100 {
			return fmt.Errorf("must be in (0, 100]")
		}
		return nil
	},
	ConfigPlanSeed: func(v string) error {
		if v == "" {
			return nil
		}
		_, err := strconv.ParseInt(v, 10, 64)
		return err
	},
}

func SetConfig(db *sql.DB, key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return fmt.Errorf("config key is required")
	}
	value = strings.TrimSpace(value)
	check, ok := knownConfigKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := check(value); err != nil {
		return fmt.Errorf("invalid value %q for %s: %v", value, key, err)
	}
	_, err := db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, value)
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func GetConfig(db *sql.DB, key string) (string, bool, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return "", false, fmt.Errorf("config key is required")
	}
	var value string
	err := db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

func ListConfig(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return out, nil
}

func autoRegenerateEnabled(db *sql.DB) (bool, error) {
	raw, ok, err := GetConfig(db, ConfigAutoRegenerate)
	if err != nil || !ok {
		return false, err
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("invalid %s setting %q", ConfigAutoRegenerate, raw)
	}
	return v, nil
}

func toleranceSetting(db *sql.DB) (float64, bool, error) {
	raw, ok, err := GetConfig(db, ConfigTolerancePct)
	if err != nil || !ok || strings.TrimSpace(raw) == "" {
		return 0, false, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s setting %q", ConfigTolerancePct, raw)
	}
	return v, true, nil
}

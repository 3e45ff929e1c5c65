package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	appDirName = "kcal"
	dbFileName = "kcal.db"

	EnvDBPath     = "KCAL_DB"
	EnvConfigPath = "KCAL_CONFIG"
	EnvUSDAAPIKey = "USDA_API_KEY"
)

func DefaultDBPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, dbFileName), nil
}

// ResolveDBPath picks the flag value, then KCAL_DB, then the default path.
func ResolveDBPath(flagValue string) (string, error) {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v, nil
	}
	if v := strings.TrimSpace(os.Getenv(EnvDBPath)); v != "" {
		return v, nil
	}
	return DefaultDBPath()
}

func EnsureDBDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return nil
}

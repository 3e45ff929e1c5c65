package app

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/saadjs/kcal-planner/internal/planner"
)

// LoadEnv reads a .env file into the process environment. A missing file is
// not an error; variables already set win.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", p, err)
		}
	}
	return nil
}

// ResolveConfigPath picks the flag value, then KCAL_CONFIG. Empty means no
// config file.
func ResolveConfigPath(flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(EnvConfigPath))
}

// LoadEngineConfig merges the YAML file at path over the engine defaults.
// An empty path returns the defaults.
func LoadEngineConfig(path string) (planner.Config, error) {
	cfg := planner.DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read engine config: %w", err)
	}
	override, err := ParseEngineConfig(raw)
	if err != nil {
		return cfg, err
	}
	log.Printf("[LoadEngineConfig] loaded overrides from %s", path)
	return cfg.Merge(override), nil
}

func ParseEngineConfig(raw []byte) (planner.Config, error) {
	var override planner.Config
	if err := yaml.UnmarshalStrict(raw, &override); err != nil {
		return planner.Config{}, fmt.Errorf("parse engine config: %w", err)
	}
	return override, nil
}

package backend

import (
	"errors"
	"fmt"

	"housebudget/internal/config"
)

// DefaultSeedDir is scanned for seed_transactions.yaml by the memory backend.
const DefaultSeedDir = "data"

// Config selects and locates a store.
type Config struct {
	Kind Kind

	SQLiteDBPath string
	BoltDBPath   string
	SeedDir      string
}

// FromAppConfig extracts the store settings from the application config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("backend: nil app config")
	}
	cfg := Config{
		Kind:         Kind(appConfig.DataBackend),
		SQLiteDBPath: appConfig.SQLiteDBPath,
		BoltDBPath:   appConfig.BoltDBPath,
		SeedDir:      appConfig.SeedDir,
	}
	if cfg.SeedDir == "" {
		cfg.SeedDir = DefaultSeedDir
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if !c.Kind.IsValid() {
		return fmt.Errorf("backend: unknown kind %q (expected one of %v)", c.Kind, Kinds())
	}
	switch c.Kind {
	case SQLite:
		if c.SQLiteDBPath == "" {
			return errors.New("backend: sqlite database path is required")
		}
	case Bolt:
		if c.BoltDBPath == "" {
			return errors.New("backend: bolt database path is required")
		}
	}
	return nil
}

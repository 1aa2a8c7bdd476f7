package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/powerlevel/internal/energy"
	"github.com/udisondev/powerlevel/internal/model"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Calculator holds all configuration for the powercalc tool.
type Calculator struct {
	LogLevel string `yaml:"log_level" env:"POWERLEVEL_LOG_LEVEL"`

	// Engine
	PrimaryType         string      `yaml:"primary_type" env:"POWERLEVEL_PRIMARY_TYPE"`
	AttackCaps          energy.Caps `yaml:"attack_caps"`
	DefaultRegenPercent float64     `yaml:"default_regen_percent" env:"POWERLEVEL_DEFAULT_REGEN"`

	// Character sheet for profiles without a saved snapshot
	Stats model.CharacterStats `yaml:"stats"`

	// Custom energy types seeded into the store on startup
	CustomTypes []energy.TypeDefinition `yaml:"custom_types"`

	// Storage
	Storage StorageConfig `yaml:"storage"`

	// Attack history export, empty disables it
	HistoryPath string `yaml:"history_path" env:"POWERLEVEL_HISTORY_PATH"`
}

// StorageConfig selects and configures the snapshot store.
type StorageConfig struct {
	Driver     string         `yaml:"driver" env:"POWERLEVEL_STORAGE_DRIVER"`
	SQLitePath string         `yaml:"sqlite_path" env:"POWERLEVEL_SQLITE_PATH"`
	Database   DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"POWERLEVEL_DB_HOST"`
	Port     int    `yaml:"port" env:"POWERLEVEL_DB_PORT"`
	User     string `yaml:"user" env:"POWERLEVEL_DB_USER"`
	Password string `yaml:"password" env:"POWERLEVEL_DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"POWERLEVEL_DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"POWERLEVEL_DB_SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultCalculator returns Calculator config with sensible defaults.
func DefaultCalculator() Calculator {
	return Calculator{
		LogLevel:            "info",
		PrimaryType:         energy.TypeKi,
		AttackCaps:          energy.DefaultCaps(),
		DefaultRegenPercent: 10,
		Stats: model.CharacterStats{
			BaseHealth:     100,
			Vitality:       10,
			SoulPower:      5,
			SoulHP:         5,
			BaseMultiplier: 1,
			BaseArmorClass: 10,
			Speed:          30,
		},
		Storage: StorageConfig{
			Driver:     DriverSQLite,
			SQLitePath: "data/powerlevel.db",
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "powerlevel",
				Password: "powerlevel",
				DBName:   "powerlevel",
				SSLMode:  "disable",
			},
		},
	}
}

// LoadCalculator loads config from a YAML file, then applies environment
// overrides. If the file doesn't exist, defaults are used.
func LoadCalculator(path string) (Calculator, error) {
	cfg := DefaultCalculator()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks option ranges.
func (c Calculator) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == DriverSQLite && c.Storage.SQLitePath == "" {
		return fmt.Errorf("sqlite_path is required for the sqlite driver")
	}
	if c.AttackCaps.Super < 0 || c.AttackCaps.Super > 100 || c.AttackCaps.Ultimate < 0 || c.AttackCaps.Ultimate > 100 {
		return fmt.Errorf("attack caps must be within 0..100")
	}
	if err := c.Stats.Validate(); err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	if c.DefaultRegenPercent < 0 {
		return fmt.Errorf("default_regen_percent must not be negative")
	}
	for _, d := range c.CustomTypes {
		if d.ID == "" && energy.NormalizeID(d.Name) == "" {
			return fmt.Errorf("custom type requires an id or name")
		}
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file at the workspace root.
const FileName = "spendmigrate.yaml"

// Storage backends.
const (
	BackendDir    = "dir"
	BackendSQLite = "sqlite"
)

// Config represents the top-level spendmigrate.yaml configuration.
// Every field can be overridden with the SPENDMIGRATE_* variable in its env tag.
type Config struct {
	Workspace WorkspaceConfig `yaml:"workspace"`
	Storage   StorageConfig   `yaml:"storage"`
	Migration MigrationConfig `yaml:"migration"`
	Logging   LoggingConfig   `yaml:"logging"`
	Git       GitConfig       `yaml:"git"`
}

// WorkspaceConfig identifies the data set being migrated.
type WorkspaceConfig struct {
	Name string `yaml:"name" env:"SPENDMIGRATE_WORKSPACE_NAME"`
}

// StorageConfig selects where profiles live.
type StorageConfig struct {
	Backend    string `yaml:"backend" env:"SPENDMIGRATE_STORAGE_BACKEND" env-default:"dir"`
	SQLitePath string `yaml:"sqlite_path" env:"SPENDMIGRATE_SQLITE_PATH" env-default:".spendmigrate/profiles.db"` // relative to the workspace root
}

// MigrationConfig controls batch runs.
type MigrationConfig struct {
	Workers int `yaml:"workers" env:"SPENDMIGRATE_WORKERS" env-default:"4"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Environment string `yaml:"environment" env:"SPENDMIGRATE_ENVIRONMENT" env-default:"development"`
}

// GitConfig controls git integration.
// AutoCommit has no env-default: cleanenv would turn an explicit false back into true.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit" env:"SPENDMIGRATE_GIT_AUTO_COMMIT"`
	AuthorName  string `yaml:"author_name" env:"SPENDMIGRATE_GIT_AUTHOR_NAME" env-default:"Spend Migrator"`
	AuthorEmail string `yaml:"author_email" env:"SPENDMIGRATE_GIT_AUTHOR_EMAIL" env-default:"migrator@spendmigrate.dev"`
}

// Path returns the config file path for a workspace root.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, FileName)
}

// Load reads a spendmigrate.yaml file from disk and applies environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks values cleanenv cannot.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendDir, BackendSQLite:
	default:
		return fmt.Errorf("invalid config: unknown storage backend %q", c.Storage.Backend)
	}
	if c.Migration.Workers < 1 {
		return fmt.Errorf("invalid config: migration.workers must be at least 1, got %d", c.Migration.Workers)
	}
	return nil
}

// SQLitePath resolves the SQLite database path against the workspace root.
func (c *Config) SQLitePath(repoRoot string) string {
	if filepath.IsAbs(c.Storage.SQLitePath) {
		return c.Storage.SQLitePath
	}
	return filepath.Join(repoRoot, c.Storage.SQLitePath)
}

// Default returns a Config with sensible defaults for a new workspace.
func Default(name string) *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			Name: name,
		},
		Storage: StorageConfig{
			Backend:    BackendDir,
			SQLitePath: ".spendmigrate/profiles.db",
		},
		Migration: MigrationConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Environment: "development",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Spend Migrator",
			AuthorEmail: "migrator@spendmigrate.dev",
		},
	}
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/hurou927/fide-ratings/internal/extract"
	"github.com/hurou927/fide-ratings/internal/load"
	"github.com/hurou927/fide-ratings/internal/schema"
)

// Config represents the YAML configuration of a load run.
type Config struct {
	BatchSize  int    `yaml:"batch_size"`
	OnConflict string `yaml:"on_conflict"`
	OnError    string `yaml:"on_error"`
	Sync       string `yaml:"sync"`
	Durability string `yaml:"durability"`
	LogLevel   string `yaml:"log_level"`
}

// Load reads and parses a YAML config file. An empty path yields the
// defaults, still subject to environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv loads ./.env if present. Variables already set in the
// environment win.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading .env: %w", err)
}

// applyEnv fills in empty fields from environment variables.
// YAML values take precedence; env vars are used only as fallback.
func (c *Config) applyEnv() {
	if c.BatchSize == 0 {
		if s := os.Getenv("FIDE_BATCH_SIZE"); s != "" {
			if n, err := strconv.Atoi(s); err == nil {
				c.BatchSize = n
			}
		}
	}
	if c.OnConflict == "" {
		c.OnConflict = os.Getenv("FIDE_ON_CONFLICT")
	}
	if c.OnError == "" {
		c.OnError = os.Getenv("FIDE_ON_ERROR")
	}
	if c.Sync == "" {
		c.Sync = os.Getenv("FIDE_SYNC")
	}
	if c.Durability == "" {
		c.Durability = os.Getenv("FIDE_DURABILITY")
	}
	if c.LogLevel == "" {
		c.LogLevel = os.Getenv("FIDE_LOG_LEVEL")
	}
}

// validate fills defaults and rejects unknown modes.
func (c *Config) validate() error {
	if c.BatchSize == 0 {
		c.BatchSize = load.DefaultBatchSize
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.OnConflict == "" {
		c.OnConflict = string(load.Replace)
	}
	if c.OnError == "" {
		c.OnError = string(extract.FailFast)
	}
	if c.Sync == "" {
		c.Sync = string(schema.Triggers)
	}
	if c.Durability == "" {
		c.Durability = string(load.Relaxed)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if _, err := load.ParseConflict(c.OnConflict); err != nil {
		return fmt.Errorf("on_conflict: %w", err)
	}
	if _, err := extract.ParsePolicy(c.OnError); err != nil {
		return fmt.Errorf("on_error: %w", err)
	}
	if _, err := schema.ParseSync(c.Sync); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if _, err := load.ParseDurability(c.Durability); err != nil {
		return fmt.Errorf("durability: %w", err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() log.Level {
	lvl, _ := log.ParseLevel(c.LogLevel)
	return lvl
}

// LoadOptions builds the pipeline options for one run. Only valid after
// Load has validated c.
func (c *Config) LoadOptions(source, destination string) load.Options {
	return load.Options{
		Source:      source,
		Destination: destination,
		BatchSize:   c.BatchSize,
		OnError:     extract.Policy(c.OnError),
		OnConflict:  load.Conflict(c.OnConflict),
		Sync:        schema.Sync(c.Sync),
		Durability:  load.Durability(c.Durability),
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	scoringdomain "github.com/Black-And-White-Club/campscore/app/modules/scoring/domain"
	"github.com/google/uuid"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Observability ObservabilityConfig `yaml:"observability"`
	Scoring       ScoringConfig       `yaml:"scoring"`
	Batch         BatchConfig         `yaml:"batch"`
	Reset         ResetConfig         `yaml:"reset"`
	Reconcile     ReconcileConfig     `yaml:"reconcile"`
	// SystemActorID attributes entries written by background jobs and resets.
	// Request handlers never resolve it, so a caller cannot act as the system.
	SystemActorID string `yaml:"system_actor_id"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
	// MaxRetries is how often the router retries a failing message.
	MaxRetries int `yaml:"max_retries"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
}

// ScoringConfig mirrors scoringdomain.Ruleset.
type ScoringConfig struct {
	Mode           string  `yaml:"mode"`
	MaxScore       float64 `yaml:"max_score"`
	BaseScore      float64 `yaml:"base_score"`
	Tier3Threshold float64 `yaml:"tier3_threshold"`
	Tier2Threshold float64 `yaml:"tier2_threshold"`
	Tier1Label     string  `yaml:"tier1_label"`
	Tier2Label     string  `yaml:"tier2_label"`
	Tier3Label     string  `yaml:"tier3_label"`
}

type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type ResetConfig struct {
	PageSize int `yaml:"page_size"`
}

// ReconcileConfig schedules the periodic reconciliation job. A zero
// interval disables it.
type ReconcileConfig struct {
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Default returns the settings used for anything the file and environment leave unset.
func Default() Config {
	def := scoringdomain.DefaultRuleset()
	return Config{
		NATS: NATSConfig{MaxRetries: 3},
		Observability: ObservabilityConfig{
			MetricsAddress: ":9090",
			Environment:    "development",
			LogLevel:       "info",
		},
		Scoring: ScoringConfig{
			Mode:           string(def.Mode),
			Tier3Threshold: def.Tier3Threshold,
			Tier2Threshold: def.Tier2Threshold,
			Tier1Label:     string(def.Tier1Label),
			Tier2Label:     string(def.Tier2Label),
			Tier3Label:     string(def.Tier3Label),
		},
		Batch:     BatchConfig{Concurrency: 4},
		Reset:     ResetConfig{PageSize: 500},
		Reconcile: ReconcileConfig{Timeout: 10 * time.Minute},
	}
}

// LoadConfig loads the configuration from a YAML file. A missing file falls
// back to environment variables alone; either way the environment wins.
func LoadConfig(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", filename, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("SCORING_MODE"); v != "" {
		cfg.Scoring.Mode = v
	}
	if v := os.Getenv("SCORING_MAX_SCORE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid SCORING_MAX_SCORE value: %w", err)
		}
		cfg.Scoring.MaxScore = f
	}
	if v := os.Getenv("BATCH_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BATCH_CONCURRENCY value: %w", err)
		}
		cfg.Batch.Concurrency = n
	}
	if v := os.Getenv("RESET_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RESET_PAGE_SIZE value: %w", err)
		}
		cfg.Reset.PageSize = n
	}
	if v := os.Getenv("RECONCILE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid RECONCILE_INTERVAL value: %w", err)
		}
		cfg.Reconcile.Interval = d
	}
	if v := os.Getenv("SYSTEM_ACTOR_ID"); v != "" {
		cfg.SystemActorID = v
	}
	return nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres dsn is required (DATABASE_URL)")
	}
	if _, err := c.SystemActor(); err != nil {
		return err
	}
	if err := c.Ruleset().Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if c.Batch.Concurrency < 0 || c.Reset.PageSize < 0 {
		return fmt.Errorf("batch concurrency and reset page size must not be negative")
	}
	if c.Reconcile.Interval < 0 {
		return fmt.Errorf("reconcile interval must not be negative")
	}
	return nil
}

// Ruleset converts the scoring section for the engine.
func (c *Config) Ruleset() scoringdomain.Ruleset {
	return scoringdomain.Ruleset{
		Mode:           scoringdomain.Mode(c.Scoring.Mode),
		MaxScore:       c.Scoring.MaxScore,
		BaseScore:      c.Scoring.BaseScore,
		Tier3Threshold: c.Scoring.Tier3Threshold,
		Tier2Threshold: c.Scoring.Tier2Threshold,
		Tier1Label:     scoringdomain.Classification(c.Scoring.Tier1Label),
		Tier2Label:     scoringdomain.Classification(c.Scoring.Tier2Label),
		Tier3Label:     scoringdomain.Classification(c.Scoring.Tier3Label),
	}
}

// SystemActor parses SystemActorID. Unset means uuid.Nil, which disables
// the system actor.
func (c *Config) SystemActor() (uuid.UUID, error) {
	if c.SystemActorID == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(c.SystemActorID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid system_actor_id: %w", err)
	}
	return id, nil
}

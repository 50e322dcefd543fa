// Package config assembles application settings from defaults, an optional
// YAML file and LEARNPATH_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/learnpath/internal/llm"
)

const (
	DefaultMaxPlanBytes = 64 * 1024
	DefaultPassPct      = 30
	DefaultFinalPassPct = 10
)

type Config struct {
	DBPath     string
	LogMode    string
	Parse      ParseConfig
	Assessment AssessmentConfig
	LLM        llm.LLMConfig
}

type ParseConfig struct {
	// BackfillMissing pads short plans with placeholder modules.
	BackfillMissing bool
	// MaxPlanBytes bounds the plan text handed to the parser.
	MaxPlanBytes int
}

type AssessmentConfig struct {
	// PassPct is the pass mark of module quizzes.
	PassPct int
	// FinalPassPct is the pass mark of the final quiz over the whole plan.
	FinalPassPct int
}

// fileConfig mirrors the YAML layout. Pointers distinguish "absent" from a
// zero value so the file only overrides what it names.
type fileConfig struct {
	DBPath  *string `yaml:"db_path"`
	LogMode *string `yaml:"log_mode"`
	Parse   struct {
		BackfillMissing *bool `yaml:"backfill_missing"`
		MaxPlanBytes    *int  `yaml:"max_plan_bytes"`
	} `yaml:"parse"`
	Assessment struct {
		PassPct      *int `yaml:"pass_pct"`
		FinalPassPct *int `yaml:"final_pass_pct"`
	} `yaml:"assessment"`
	LLM struct {
		Enabled    *bool   `yaml:"enabled"`
		LogCalls   *bool   `yaml:"log_calls"`
		Provider   *string `yaml:"provider"`
		Endpoint   *string `yaml:"endpoint"`
		Model      *string `yaml:"model"`
		APIKey     *string `yaml:"api_key"`
		TimeoutMs  *int    `yaml:"timeout_ms"`
		MaxRetries *int    `yaml:"max_retries"`
	} `yaml:"llm"`
}

// Default returns the built-in settings. The database lives under the
// user's home directory.
func Default() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("finding home directory: %w", err)
	}
	return Config{
		DBPath:  filepath.Join(home, ".learnpath", "learnpath.db"),
		LogMode: "prod",
		Parse: ParseConfig{
			BackfillMissing: true,
			MaxPlanBytes:    DefaultMaxPlanBytes,
		},
		Assessment: AssessmentConfig{PassPct: DefaultPassPct, FinalPassPct: DefaultFinalPassPct},
		LLM:        llm.DefaultConfig(),
	}, nil
}

// Load reads the config file named by LEARNPATH_CONFIG, or
// ~/.learnpath/config.yaml, then applies environment overrides.
// A missing file is not an error.
func Load() (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}

	path := os.Getenv("LEARNPATH_CONFIG")
	if path == "" {
		path = filepath.Join(filepath.Dir(cfg.DBPath), "config.yaml")
	}
	if err := cfg.mergeFile(path); err != nil {
		return Config{}, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	return c.mergeYAML(data)
}

func (c *Config) mergeYAML(data []byte) error {
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	set(&c.DBPath, f.DBPath)
	set(&c.LogMode, f.LogMode)
	set(&c.Parse.BackfillMissing, f.Parse.BackfillMissing)
	set(&c.Parse.MaxPlanBytes, f.Parse.MaxPlanBytes)
	set(&c.Assessment.PassPct, f.Assessment.PassPct)
	set(&c.Assessment.FinalPassPct, f.Assessment.FinalPassPct)

	set(&c.LLM.Enabled, f.LLM.Enabled)
	set(&c.LLM.LogCalls, f.LLM.LogCalls)
	if f.LLM.Provider != nil {
		c.LLM.Provider = llm.Provider(strings.ToLower(*f.LLM.Provider))
	}
	set(&c.LLM.Endpoint, f.LLM.Endpoint)
	set(&c.LLM.Model, f.LLM.Model)
	set(&c.LLM.APIKey, f.LLM.APIKey)
	set(&c.LLM.TimeoutMs, f.LLM.TimeoutMs)
	set(&c.LLM.MaxRetries, f.LLM.MaxRetries)
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LEARNPATH_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("LEARNPATH_LOG_MODE"); v != "" {
		c.LogMode = v
	}
	if v := os.Getenv("LEARNPATH_BACKFILL_MISSING"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Parse.BackfillMissing = b
		}
	}
	llm.ApplyEnv(&c.LLM)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	switch strings.ToLower(c.LogMode) {
	case "dev", "development", "prod", "production":
	default:
		errs = append(errs, fmt.Errorf("log_mode must be dev or prod, got %q", c.LogMode))
	}
	if c.Parse.MaxPlanBytes <= 0 {
		errs = append(errs, fmt.Errorf("parse.max_plan_bytes must be positive, got %d", c.Parse.MaxPlanBytes))
	}
	if c.Assessment.PassPct < 0 || c.Assessment.PassPct > 100 {
		errs = append(errs, fmt.Errorf("assessment.pass_pct must be within 0..100, got %d", c.Assessment.PassPct))
	}
	if c.Assessment.FinalPassPct < 0 || c.Assessment.FinalPassPct > 100 {
		errs = append(errs, fmt.Errorf("assessment.final_pass_pct must be within 0..100, got %d", c.Assessment.FinalPassPct))
	}
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

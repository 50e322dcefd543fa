package llm

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskPlanGenerate TaskType = "plan_generate"
	TaskPlanImprove  TaskType = "plan_improve"
	TaskContent      TaskType = "content"
	TaskAssessment   TaskType = "assessment"
)

// Provider selects the wire protocol spoken to the model server.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Enabled    bool
	LogCalls   bool
	Provider   Provider
	Endpoint   string
	Model      string
	APIKey     string
	TimeoutMs  int
	MaxRetries int
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns an LLMConfig with sensible defaults.
// LLM is disabled by default; plan creation then requires supplied text.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    false,
		LogCalls:   false,
		Provider:   ProviderOllama,
		Endpoint:   "http://localhost:11434",
		Model:      "llama3.2",
		TimeoutMs:  30000,
		MaxRetries: 1,
		Tasks: map[TaskType]TaskConfig{
			TaskPlanGenerate: {Temperature: 0.7, MaxTokens: 4000, TimeoutMs: 90000},
			TaskPlanImprove:  {Temperature: 0.7, MaxTokens: 4000, TimeoutMs: 90000},
			TaskContent:      {Temperature: 0.7, MaxTokens: 4000, TimeoutMs: 120000},
			TaskAssessment:   {Temperature: 0.3, MaxTokens: 2000, TimeoutMs: 60000},
		},
	}
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	return cfg
}

// ApplyEnv overlays LEARNPATH_LLM_* environment variables onto cfg.
// Unparseable values are ignored.
func ApplyEnv(cfg *LLMConfig) {
	if v := os.Getenv("LEARNPATH_LLM_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = b
		}
	}
	if v := os.Getenv("LEARNPATH_LLM_LOG_CALLS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogCalls = b
		}
	}
	if v := os.Getenv("LEARNPATH_LLM_PROVIDER"); v != "" {
		cfg.Provider = Provider(strings.ToLower(v))
	}
	if v := os.Getenv("LEARNPATH_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("LEARNPATH_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("LEARNPATH_LLM_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("LEARNPATH_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("LEARNPATH_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	applyTaskTimeoutEnv(cfg, TaskPlanGenerate, "LEARNPATH_LLM_PLAN_GENERATE_TIMEOUT_MS")
	applyTaskTimeoutEnv(cfg, TaskPlanImprove, "LEARNPATH_LLM_PLAN_IMPROVE_TIMEOUT_MS")
	applyTaskTimeoutEnv(cfg, TaskContent, "LEARNPATH_LLM_CONTENT_TIMEOUT_MS")
	applyTaskTimeoutEnv(cfg, TaskAssessment, "LEARNPATH_LLM_ASSESSMENT_TIMEOUT_MS")
}

// Validate reports configuration that would make every call fail.
func (c LLMConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	var errs []error
	switch c.Provider {
	case ProviderOllama:
	case ProviderOpenAI:
		if c.APIKey == "" {
			errs = append(errs, errors.New("llm: openai provider requires an api key"))
		}
	default:
		errs = append(errs, fmt.Errorf("llm: unknown provider %q", c.Provider))
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		errs = append(errs, errors.New("llm: endpoint is required"))
	}
	if strings.TrimSpace(c.Model) == "" {
		errs = append(errs, errors.New("llm: model is required"))
	}
	if c.TimeoutMs <= 0 {
		errs = append(errs, fmt.Errorf("llm: timeout must be positive, got %d", c.TimeoutMs))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("llm: max retries must not be negative, got %d", c.MaxRetries))
	}
	return errors.Join(errs...)
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func applyTaskTimeoutEnv(cfg *LLMConfig, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	if cfg.Tasks == nil {
		cfg.Tasks = map[TaskType]TaskConfig{}
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Temporal TemporalConfig `mapstructure:"temporal"`
	Cases    CasesConfig    `mapstructure:"cases"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Pact     PactConfig     `mapstructure:"pact"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// TemporalConfig holds the connection settings for the workflow engine.
// TestingMode skips the connection entirely; every engine call then fails
// fast with an unavailable error instead of dialing per request.
type TemporalConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Namespace   string        `mapstructure:"namespace"`
	TestingMode bool          `mapstructure:"testing_mode"`
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

// Target returns the host:port address of the Temporal frontend.
func (c TemporalConfig) Target() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CasesConfig holds the identity of the case workflow and its wiring.
type CasesConfig struct {
	IDPrefix       string `mapstructure:"id_prefix"`
	WorkflowType   string `mapstructure:"workflow_type"`
	ProcessName    string `mapstructure:"process_name"`
	ProcessVersion string `mapstructure:"process_version"`
	TaskQueue      string `mapstructure:"task_queue"`
	DecisionSignal string `mapstructure:"decision_signal"`
	StateQuery     string `mapstructure:"state_query"`
}

// AuthConfig holds tenant authorization configuration
type AuthConfig struct {
	TokenPrefix string `mapstructure:"token_prefix"`
}

// PactConfig controls the provider-state endpoint used by contract
// verification. It must stay disabled in production profiles.
type PactConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	TaskQueue string `mapstructure:"task_queue"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	setDefaults(v)

	// The config file is optional; env vars and defaults cover a full setup.
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	// Env-bound values arrive as strings; decode them into typed fields.
	var cfg Config
	weaklyTyped := func(dc *mapstructure.DecoderConfig) { dc.WeaklyTypedInput = true }
	if err := v.Unmarshal(&cfg, weaklyTyped); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:3002"})

	// Temporal defaults
	v.SetDefault("temporal.host", "localhost")
	v.SetDefault("temporal.port", 7233)
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.testing_mode", false)
	v.SetDefault("temporal.call_timeout", 10*time.Second)

	// Case workflow defaults
	v.SetDefault("cases.id_prefix", "case-")
	v.SetDefault("cases.workflow_type", "FlexibleCaseWorkflow")
	v.SetDefault("cases.process_name", "expense_approval")
	v.SetDefault("cases.process_version", "1.0.0")
	v.SetDefault("cases.task_queue", "cases-task-queue")
	v.SetDefault("cases.decision_signal", "decision")
	v.SetDefault("cases.state_query", "get_current_state")

	// Auth defaults
	v.SetDefault("auth.token_prefix", "test-token-for-")

	// Pact defaults
	v.SetDefault("pact.enabled", false)
	v.SetDefault("pact.task_queue", "pact-verification-task-queue")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("temporal.host", "TEMPORAL_HOST")
	v.BindEnv("temporal.port", "TEMPORAL_PORT")
	v.BindEnv("temporal.namespace", "TEMPORAL_NAMESPACE")
	v.BindEnv("temporal.testing_mode", "TESTING_MODE")
	v.BindEnv("cases.task_queue", "TEMPORAL_CASES_TASK_QUEUE")
	v.BindEnv("pact.enabled", "PACT_STATES_ENABLED")
	v.BindEnv("server.port", "BRIDGE_PORT")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if !c.Temporal.TestingMode {
		if c.Temporal.Host == "" {
			return fmt.Errorf("temporal.host is required")
		}
		if c.Temporal.Port <= 0 || c.Temporal.Port > 65535 {
			return fmt.Errorf("temporal.port must be between 1 and 65535")
		}
	}
	if c.Temporal.Namespace == "" {
		return fmt.Errorf("temporal.namespace is required")
	}
	if c.Temporal.CallTimeout <= 0 {
		return fmt.Errorf("temporal.call_timeout must be positive")
	}

	if c.Cases.IDPrefix == "" {
		return fmt.Errorf("cases.id_prefix is required")
	}
	if c.Cases.WorkflowType == "" {
		return fmt.Errorf("cases.workflow_type is required")
	}
	if c.Cases.TaskQueue == "" {
		return fmt.Errorf("cases.task_queue is required")
	}

	if c.Auth.TokenPrefix == "" {
		return fmt.Errorf("auth.token_prefix is required")
	}

	return nil
}

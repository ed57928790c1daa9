// Package config provides configuration management for the entregaveis CLI.
// It supports loading configuration from a YAML file, environment variables and
// command-line flags (applied by the caller after LoadConfig).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for command results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Default configuration values.
const (
	DefaultOutputDir    = "saidas"
	DefaultModel        = "gemini-2.5-flash"
	DefaultAPIBaseURL   = "https://generativelanguage.googleapis.com"
	DefaultTimeout      = 2 * time.Minute
	DefaultOutputFormat = OutputFormatText
	DefaultReportMode   = "text"
	DefaultLogLevel     = "warn"
	DefaultConfigDir    = ".entregaveis"
	DefaultConfigFile   = "config.yaml"

	envPrefix = "ENTREGAVEIS_"
)

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// OutputDir is the flat directory holding html_*.html and excel_*.xlsx exports.
	OutputDir string `yaml:"output_dir"`

	// Model is the text-generation model used for reports and chat.
	Model string `yaml:"model"`

	// APIBaseURL is the base URL of the Generative Language API.
	APIBaseURL string `yaml:"api_base_url"`

	// Timeout bounds each model call. It is the only deadline on an action.
	Timeout time.Duration `yaml:"timeout"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// ReportMode is the default report mode: "structured" (JSON) or "text".
	ReportMode string `yaml:"report_mode"`

	// LogLevel is the minimum log level written to stderr.
	LogLevel string `yaml:"log_level"`

	// LogJSON switches stderr logs from console to JSON lines.
	LogJSON bool `yaml:"log_json,omitempty"`

	// Debug enables debug logging and verbose error output.
	Debug bool `yaml:"debug,omitempty"`

	// MetricsAddr, when set, exposes /metrics and /version on this address.
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		OutputDir:    DefaultOutputDir,
		Model:        DefaultModel,
		APIBaseURL:   DefaultAPIBaseURL,
		Timeout:      DefaultTimeout,
		OutputFormat: DefaultOutputFormat,
		ReportMode:   DefaultReportMode,
		LogLevel:     DefaultLogLevel,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $ENTREGAVEIS_CONFIG_DIR if set, otherwise ~/.entregaveis
func ConfigDir() (string, error) {
	if dir := os.Getenv(envPrefix + "CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the configuration from file and environment variables.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.entregaveis/config.yaml or $ENTREGAVEIS_CONFIG_DIR/config.yaml)
// 3. Environment variables (ENTREGAVEIS_OUTPUT_DIR, ENTREGAVEIS_MODEL, ...)
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// configFile mirrors CLIConfig with the timeout kept as a duration string.
type configFile struct {
	OutputDir    string       `yaml:"output_dir"`
	Model        string       `yaml:"model"`
	APIBaseURL   string       `yaml:"api_base_url,omitempty"`
	Timeout      string       `yaml:"timeout"`
	OutputFormat OutputFormat `yaml:"output_format"`
	ReportMode   string       `yaml:"report_mode,omitempty"`
	LogLevel     string       `yaml:"log_level,omitempty"`
	LogJSON      bool         `yaml:"log_json,omitempty"`
	Debug        bool         `yaml:"debug,omitempty"`
	MetricsAddr  string       `yaml:"metrics_addr,omitempty"`
}

func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.OutputDir != "" {
		cfg.OutputDir = fileCfg.OutputDir
	}
	if fileCfg.Model != "" {
		cfg.Model = fileCfg.Model
	}
	if fileCfg.APIBaseURL != "" {
		cfg.APIBaseURL = fileCfg.APIBaseURL
	}
	if fileCfg.Timeout != "" {
		timeout, err := time.ParseDuration(fileCfg.Timeout)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	if fileCfg.ReportMode != "" {
		cfg.ReportMode = fileCfg.ReportMode
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.MetricsAddr != "" {
		cfg.MetricsAddr = fileCfg.MetricsAddr
	}
	cfg.LogJSON = fileCfg.LogJSON
	cfg.Debug = fileCfg.Debug

	return nil
}

func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv(envPrefix + "OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv(envPrefix + "MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv(envPrefix + "API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv(envPrefix + "TIMEOUT"); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = timeout
		}
	}
	if v := os.Getenv(envPrefix + "OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}
	if v := os.Getenv(envPrefix + "REPORT_MODE"); v != "" {
		cfg.ReportMode = v
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(envPrefix + "LOG_JSON"); v == "true" || v == "1" {
		cfg.LogJSON = true
	}
	if v := os.Getenv(envPrefix + "DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}
	if v := os.Getenv(envPrefix + "METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
}

// Validate checks that the configuration is valid.
func (c *CLIConfig) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output_dir is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be text, json, or yaml)", c.OutputFormat)
	}
	if c.ReportMode != "structured" && c.ReportMode != "text" {
		return fmt.Errorf("invalid report_mode: %q (must be structured or text)", c.ReportMode)
	}
	return nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *CLIConfig) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	fileCfg := configFile{
		OutputDir:    cfg.OutputDir,
		Model:        cfg.Model,
		APIBaseURL:   cfg.APIBaseURL,
		Timeout:      cfg.Timeout.String(),
		OutputFormat: cfg.OutputFormat,
		ReportMode:   cfg.ReportMode,
		LogLevel:     cfg.LogLevel,
		LogJSON:      cfg.LogJSON,
		Debug:        cfg.Debug,
		MetricsAddr:  cfg.MetricsAddr,
	}

	data, err := yaml.Marshal(&fileCfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// ResolvedOutputDir returns OutputDir with ~ expanded.
func (c *CLIConfig) ResolvedOutputDir() (string, error) {
	return ExpandPath(c.OutputDir)
}

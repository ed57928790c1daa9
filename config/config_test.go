package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every ENTREGAVEIS_ variable that LoadConfig reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OUTPUT_DIR", "MODEL", "API_BASE_URL", "TIMEOUT", "OUTPUT_FORMAT",
		"REPORT_MODE", "LOG_LEVEL", "LOG_JSON", "DEBUG", "METRICS_ADDR",
	} {
		t.Setenv(envPrefix+key, "")
		os.Unsetenv(envPrefix + key)
	}
}

// TestDefaultConfig verifies that DefaultConfig returns expected defaults.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.OutputDir != DefaultOutputDir {
		t.Errorf("OutputDir = %v, want %v", cfg.OutputDir, DefaultOutputDir)
	}
	if cfg.Model != "gemini-2.5-flash" {
		t.Errorf("Model = %v, want gemini-2.5-flash", cfg.Model)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.OutputFormat != OutputFormatText {
		t.Errorf("OutputFormat = %v, want text", cfg.OutputFormat)
	}
	if cfg.ReportMode != "text" {
		t.Errorf("ReportMode = %v, want text", cfg.ReportMode)
	}
	if cfg.Debug {
		t.Error("Debug should be false by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestOutputFormat_IsValid(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   bool
	}{
		{OutputFormatText, true},
		{OutputFormatJSON, true},
		{OutputFormatYAML, true},
		{"xml", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := tc.format.IsValid(); got != tc.want {
			t.Errorf("OutputFormat(%q).IsValid() = %v, want %v", tc.format, got, tc.want)
		}
	}
}

// TestCLIConfig_Validate verifies configuration validation.
func TestCLIConfig_Validate(t *testing.T) {
	valid := func() *CLIConfig { return DefaultConfig() }

	tests := []struct {
		name   string
		mutate func(*CLIConfig)
		errMsg string
	}{
		{name: "valid config", mutate: func(*CLIConfig) {}},
		{name: "empty output dir", mutate: func(c *CLIConfig) { c.OutputDir = " " }, errMsg: "output_dir is required"},
		{name: "empty model", mutate: func(c *CLIConfig) { c.Model = "" }, errMsg: "model is required"},
		{name: "zero timeout", mutate: func(c *CLIConfig) { c.Timeout = 0 }, errMsg: "timeout must be positive"},
		{name: "negative timeout", mutate: func(c *CLIConfig) { c.Timeout = -time.Second }, errMsg: "timeout must be positive"},
		{name: "invalid output format", mutate: func(c *CLIConfig) { c.OutputFormat = "xml" }, errMsg: "invalid output_format"},
		{name: "invalid report mode", mutate: func(c *CLIConfig) { c.ReportMode = "pdf" }, errMsg: "invalid report_mode"},
		{name: "structured report mode", mutate: func(c *CLIConfig) { c.ReportMode = "structured" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.errMsg == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tc.errMsg)
			}
		})
	}
}

// TestConfigDir verifies config directory path resolution.
func TestConfigDir(t *testing.T) {
	t.Run("with env var", func(t *testing.T) {
		customDir := filepath.Join(t.TempDir(), "custom")
		t.Setenv("ENTREGAVEIS_CONFIG_DIR", customDir)

		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}
		if dir != customDir {
			t.Errorf("ConfigDir() = %v, want %v", dir, customDir)
		}
	})

	t.Run("default without env var", func(t *testing.T) {
		t.Setenv("ENTREGAVEIS_CONFIG_DIR", "")

		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultConfigDir)
		if dir != expected {
			t.Errorf("ConfigDir() = %v, want %v", dir, expected)
		}
	})
}

func TestConfigPath(t *testing.T) {
	customDir := t.TempDir()
	t.Setenv("ENTREGAVEIS_CONFIG_DIR", customDir)

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath() error = %v", err)
	}
	if expected := filepath.Join(customDir, DefaultConfigFile); path != expected {
		t.Errorf("ConfigPath() = %v, want %v", path, expected)
	}
}

// TestLoadConfig_Defaults verifies default values when no config exists.
func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENTREGAVEIS_CONFIG_DIR", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.OutputDir != DefaultOutputDir {
		t.Errorf("OutputDir = %v, want %v", cfg.OutputDir, DefaultOutputDir)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
}

// TestLoadConfig_FromFile verifies values are read from config.yaml.
func TestLoadConfig_FromFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("ENTREGAVEIS_CONFIG_DIR", dir)

	content := `output_dir: /data/saidas
model: gemini-2.0-flash
timeout: 45s
output_format: json
report_mode: structured
debug: true
metrics_addr: 127.0.0.1:9464
`
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.OutputDir != "/data/saidas" {
		t.Errorf("OutputDir = %v, want /data/saidas", cfg.OutputDir)
	}
	if cfg.Model != "gemini-2.0-flash" {
		t.Errorf("Model = %v, want gemini-2.0-flash", cfg.Model)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", cfg.Timeout)
	}
	if cfg.OutputFormat != OutputFormatJSON {
		t.Errorf("OutputFormat = %v, want json", cfg.OutputFormat)
	}
	if cfg.ReportMode != "structured" {
		t.Errorf("ReportMode = %v, want structured", cfg.ReportMode)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
	if cfg.MetricsAddr != "127.0.0.1:9464" {
		t.Errorf("MetricsAddr = %v", cfg.MetricsAddr)
	}
	if cfg.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("APIBaseURL = %v, want default", cfg.APIBaseURL)
	}
}

func TestLoadConfig_InvalidTimeoutInFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("ENTREGAVEIS_CONFIG_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("timeout: soon\n"), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() expected error for invalid timeout")
	}
}

// TestLoadConfig_WithEnvOverrides verifies environment variables win over the file.
func TestLoadConfig_WithEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("ENTREGAVEIS_CONFIG_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("output_dir: from-file\n"), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	t.Setenv("ENTREGAVEIS_OUTPUT_DIR", "from-env")
	t.Setenv("ENTREGAVEIS_MODEL", "gemini-test")
	t.Setenv("ENTREGAVEIS_TIMEOUT", "10s")
	t.Setenv("ENTREGAVEIS_OUTPUT_FORMAT", "yaml")
	t.Setenv("ENTREGAVEIS_LOG_JSON", "1")
	t.Setenv("ENTREGAVEIS_DEBUG", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.OutputDir != "from-env" {
		t.Errorf("OutputDir = %v, want from-env", cfg.OutputDir)
	}
	if cfg.Model != "gemini-test" {
		t.Errorf("Model = %v, want gemini-test", cfg.Model)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.OutputFormat != OutputFormatYAML {
		t.Errorf("OutputFormat = %v, want yaml", cfg.OutputFormat)
	}
	if !cfg.LogJSON || !cfg.Debug {
		t.Errorf("LogJSON=%v Debug=%v, want both true", cfg.LogJSON, cfg.Debug)
	}
}

func TestLoadConfig_InvalidEnvFormat(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENTREGAVEIS_CONFIG_DIR", t.TempDir())
	t.Setenv("ENTREGAVEIS_OUTPUT_FORMAT", "csv")

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() expected validation error")
	}
}

// TestSaveConfig verifies a saved config round-trips through LoadConfig.
func TestSaveConfig(t *testing.T) {
	clearEnv(t)
	dir := filepath.Join(t.TempDir(), "nested")
	t.Setenv("ENTREGAVEIS_CONFIG_DIR", dir)

	cfg := DefaultConfig()
	cfg.OutputDir = "entregas"
	cfg.Timeout = 90 * time.Second
	cfg.ReportMode = "structured"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, DefaultConfigFile))
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file perm = %o, want 600", perm)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.OutputDir != "entregas" || loaded.Timeout != 90*time.Second || loaded.ReportMode != "structured" {
		t.Errorf("loaded config = %+v", loaded)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"~/saidas", filepath.Join(home, "saidas")},
	}
	for _, tc := range tests {
		got, err := ExpandPath(tc.in)
		if err != nil {
			t.Fatalf("ExpandPath(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

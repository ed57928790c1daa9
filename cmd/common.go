// Package cmd provides the CLI commands for entregaveis: one command per
// dashboard page plus auth and the interactive dashboard itself.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/entregaveis/config"
	"github.com/otherjamesbrown/entregaveis/credentials"
	"github.com/otherjamesbrown/entregaveis/pkg/llm"
	"github.com/otherjamesbrown/entregaveis/pkg/logging"
	"github.com/otherjamesbrown/entregaveis/pkg/observability"
)

// ModelFactory builds the model used for reports and chat.
type ModelFactory func(cfg *config.CLIConfig, apiKey string) (llm.Model, error)

// KeyResolver returns the Gemini API key and where it came from.
type KeyResolver func() (string, credentials.Source, error)

// SharedMetrics registers the process metrics once on the default registry.
var SharedMetrics = sync.OnceValue(observability.DefaultMetrics)

// DefaultModelFactory returns an instrumented Gemini client.
func DefaultModelFactory() ModelFactory {
	return func(cfg *config.CLIConfig, apiKey string) (llm.Model, error) {
		client, err := llm.NewGeminiClient(llm.GeminiConfig{
			APIKey:  apiKey,
			Model:   cfg.Model,
			BaseURL: cfg.APIBaseURL,
			Timeout: cfg.Timeout,
		}, nil)
		if err != nil {
			return nil, err
		}
		return llm.Instrument(client, SharedMetrics(), observability.NewTracer(), logging.MustGlobal()), nil
	}
}

// DefaultKeyResolver checks the environment, the secrets store, then prompts.
func DefaultKeyResolver() KeyResolver {
	return func() (string, credentials.Source, error) {
		return credentials.DefaultResolver().Resolve()
	}
}

// loadConfig returns the injected config or loads it.
func loadConfig(cfg *config.CLIConfig, load func() (*config.CLIConfig, error)) (*config.CLIConfig, error) {
	if cfg != nil {
		return cfg, nil
	}
	if load == nil {
		load = config.LoadConfig
	}
	loaded, err := load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return loaded, nil
}

// outputFormat picks the --output flag over the configured default.
func outputFormat(cfg *config.CLIConfig, flag string) (config.OutputFormat, error) {
	if flag == "" {
		return cfg.OutputFormat, nil
	}
	f := config.OutputFormat(strings.ToLower(flag))
	if !f.IsValid() {
		return "", fmt.Errorf("invalid output format %q (must be text, json, or yaml)", flag)
	}
	return f, nil
}

// outputDir picks the --dir flag over the configured directory.
func outputDir(cfg *config.CLIConfig, flag string) (string, error) {
	if flag != "" {
		return config.ExpandPath(flag)
	}
	return cfg.ResolvedOutputDir()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2)
	return enc.Encode(v)
}

// writeStructured handles the json and yaml formats and reports whether it did.
func writeStructured(w io.Writer, format config.OutputFormat, v any) (bool, error) {
	switch format {
	case config.OutputFormatJSON:
		return true, writeJSON(w, v)
	case config.OutputFormatYAML:
		return true, writeYAML(w, v)
	}
	return false, nil
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

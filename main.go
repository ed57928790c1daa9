// Package main provides the entregaveis CLI entry point.
// entregaveis browses, reports on and chats about the meeting deliverables
// (HTML transcripts and Excel statistics) produced by a consultancy engagement.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/entregaveis/cmd"
	"github.com/otherjamesbrown/entregaveis/config"
	"github.com/otherjamesbrown/entregaveis/pkg/buildinfo"
	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
	"github.com/otherjamesbrown/entregaveis/pkg/logging"
)

// Global flags and state.
var (
	debug    bool
	logLevel string

	// cfg holds the loaded configuration.
	cfg *config.CLIConfig

	// metricsServer is started when metrics_addr is configured.
	metricsServer *http.Server
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "entregaveis",
	Short: "Deliverables viewer - transcripts, statistics, reports and chat",
	Long: `entregaveis reads the deliverables of a consultancy engagement from a flat
output directory and lets you browse and query them.

The directory holds, per meeting:
  html_{meeting}.html    formatted transcript
  excel_{meeting}.xlsx   speaking-time statistics

Reports and chat use a Gemini model. Set GEMINI_API_KEY or run
'entregaveis auth login' once to store the key.

COMMON WORKFLOWS:
  Browse:     entregaveis meetings list  →  entregaveis meetings show <meeting>
  Statistics: entregaveis stats <meeting>
  Reports:    entregaveis report <meeting> --type ata --format html --out .
  Chat:       entregaveis chat "Quais decisões foram tomadas?"
  Everything: entregaveis dashboard

Commands that print data support --output json or yaml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		// Skip initialization for commands that don't need it.
		if c.Name() == "version" || c.Name() == "help" || c.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			// config set/init must still be able to repair a broken file.
			if c.Parent() == configCmd && c != configShowCmd {
				cfg = nil
				return nil
			}
			return fmt.Errorf("loading configuration: %w", err)
		}

		// Override with command-line flags.
		if debug {
			cfg.Debug = true
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		logging.SetGlobal(newLogger(cfg, os.Stderr))

		if cfg.MetricsAddr != "" && c.Name() != "dashboard" {
			metricsServer = startMetricsServer(cfg.MetricsAddr, logging.MustGlobal())
		}
		return nil
	},
}

// newLogger builds the process logger from configuration.
func newLogger(c *config.CLIConfig, w io.Writer) logging.Logger {
	level := logging.ParseLevel(c.LogLevel)
	if c.Debug {
		level = logging.LevelDebug
	}
	return logging.NewLogger(&logging.Config{
		Level:       level,
		ServiceName: buildinfo.AppName,
		Environment: "local",
		JSONFormat:  c.LogJSON,
		Output:      w,
	})
}

// startMetricsServer exposes /metrics and /version until the process exits.
func startMetricsServer(addr string, logger logging.Logger) *http.Server {
	cmd.SharedMetrics()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/version", buildinfo.Handler(buildinfo.AppName))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics server listening", logging.F("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", logging.Err(err))
		}
	}()
	return srv
}

// Version command flags.
var versionOutput string

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the version, commit hash, and build time of the entregaveis CLI.

Examples:
  entregaveis version
  entregaveis version -o json`,
	RunE: func(c *cobra.Command, args []string) error {
		info := buildinfo.Get(buildinfo.AppName)
		out := c.OutOrStdout()

		if strings.EqualFold(versionOutput, "json") {
			return writeVersionJSON(out, info)
		}
		if versionOutput != "" && !strings.EqualFold(versionOutput, "text") {
			return fmt.Errorf("invalid output format %q (must be text or json)", versionOutput)
		}

		fmt.Fprintf(out, "entregaveis version %s\n", info.Version)
		fmt.Fprintf(out, "  commit:     %s\n", info.Commit)
		fmt.Fprintf(out, "  built:      %s\n", info.BuildTime)
		fmt.Fprintf(out, "  go:         %s\n", info.GoVersion)
		return nil
	},
}

func writeVersionJSON(w io.Writer, info buildinfo.Info) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

// configCmd manages CLI configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long:  `View and modify the entregaveis configuration stored in ~/.entregaveis/config.yaml.`,
}

// configShowCmd displays current configuration.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration: file values with environment overrides applied.`,
	RunE: func(c *cobra.Command, args []string) error {
		if cfg == nil {
			var err error
			cfg, err = config.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
		}
		configPath, _ := config.ConfigPath()
		printConfig(c.OutOrStdout(), configPath, cfg)
		return nil
	},
}

func printConfig(w io.Writer, path string, c *config.CLIConfig) {
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintf(w, "  Config file:    %s\n", path)
	fmt.Fprintf(w, "  Output dir:     %s\n", c.OutputDir)
	fmt.Fprintf(w, "  Model:          %s\n", c.Model)
	fmt.Fprintf(w, "  API base URL:   %s\n", c.APIBaseURL)
	fmt.Fprintf(w, "  Timeout:        %s\n", c.Timeout)
	fmt.Fprintf(w, "  Output format:  %s\n", c.OutputFormat)
	fmt.Fprintf(w, "  Report mode:    %s\n", c.ReportMode)
	fmt.Fprintf(w, "  Log level:      %s\n", c.LogLevel)
	fmt.Fprintf(w, "  Log JSON:       %t\n", c.LogJSON)
	fmt.Fprintf(w, "  Debug:          %t\n", c.Debug)
	fmt.Fprintf(w, "  Metrics addr:   %s\n", valueOrDefault(c.MetricsAddr, "(disabled)"))
}

// configInitCmd initializes configuration.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Long:  `Create a new configuration file with default values if one doesn't exist.`,
	RunE: func(c *cobra.Command, args []string) error {
		out := c.OutOrStdout()
		configPath, err := config.ConfigPath()
		if err != nil {
			return fmt.Errorf("getting config path: %w", err)
		}

		if _, err := os.Stat(configPath); err == nil {
			fmt.Fprintf(out, "Configuration file already exists: %s\n", configPath)
			fmt.Fprintln(out, "Use 'entregaveis config show' to view current settings.")
			return nil
		}

		defaultCfg := config.DefaultConfig()
		if err := config.SaveConfig(defaultCfg); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}

		fmt.Fprintf(out, "Created configuration file: %s\n\n", configPath)
		printConfig(out, configPath, defaultCfg)
		return nil
	},
}

// configSetCmd sets a configuration value.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the config file.

Available keys:
  output_dir     - Directory holding html_*.html and excel_*.xlsx (supports ~)
  model          - Gemini model name
  api_base_url   - Generative Language API base URL
  timeout        - Model call timeout (e.g., 90s, 2m)
  output_format  - Default output format (text, json, yaml)
  report_mode    - Default report mode (structured, text)
  log_level      - Log level (debug, info, warn, error)
  log_json       - Write logs as JSON lines (true/false)
  debug          - Enable debug mode (true/false)
  metrics_addr   - Expose /metrics on this address (empty disables)

Examples:
  entregaveis config set output_dir ~/projetos/cliente/saidas
  entregaveis config set model gemini-2.5-pro
  entregaveis config set report_mode structured`,
	Args: cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		currentCfg, err := config.LoadConfig()
		if err != nil {
			// If config doesn't exist or is broken, start with defaults.
			currentCfg = config.DefaultConfig()
		}

		if err := setConfigValue(currentCfg, key, value); err != nil {
			return err
		}
		if err := currentCfg.Validate(); err != nil {
			return err
		}
		if err := config.SaveConfig(currentCfg); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}

		fmt.Fprintf(c.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

// setConfigValue applies one key=value to c.
func setConfigValue(c *config.CLIConfig, key, value string) error {
	switch key {
	case "output_dir":
		if _, err := config.ExpandPath(value); err != nil {
			return fmt.Errorf("invalid output dir: %w", err)
		}
		// Stored unexpanded for readability.
		c.OutputDir = value
	case "model":
		c.Model = value
	case "api_base_url":
		c.APIBaseURL = strings.TrimRight(value, "/")
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		c.Timeout = d
	case "output_format":
		format := config.OutputFormat(value)
		if !format.IsValid() {
			return fmt.Errorf("invalid output format: %s (must be text, json, or yaml)", value)
		}
		c.OutputFormat = format
	case "report_mode":
		c.ReportMode = value
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "warning", "error":
			c.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", value)
		}
	case "log_json":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		c.LogJSON = b
	case "debug":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		c.Debug = b
	case "metrics_addr":
		c.MetricsAddr = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s value: %s (must be true or false)", key, value)
	}
	return b, nil
}

func valueOrDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// completionCmd generates shell completion scripts.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for entregaveis.

Bash:
  $ source <(entregaveis completion bash)

Zsh:
  $ entregaveis completion zsh > "${fpath[1]}/_entregaveis"

Fish:
  $ entregaveis completion fish | source

PowerShell:
  PS> entregaveis completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(c *cobra.Command, args []string) error {
		out := c.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func init() {
	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	versionCmd.Flags().StringVarP(&versionOutput, "output", "o", "", "output format: text, json")

	rootCmd.AddGroup(
		&cobra.Group{ID: "deliverables", Title: "Deliverables:"},
		&cobra.Group{ID: "ai", Title: "Reports & Chat:"},
		&cobra.Group{ID: "setup", Title: "Setup:"},
	)

	// Deliverables
	meetingsCmd := cmd.NewMeetingsCommand(nil)
	meetingsCmd.GroupID = "deliverables"
	statsCmd := cmd.NewStatsCommand(nil)
	statsCmd.GroupID = "deliverables"
	exportCmd := cmd.NewExportCommand(nil)
	exportCmd.GroupID = "deliverables"
	dashboardCmd := cmd.NewDashboardCommand(nil)
	dashboardCmd.GroupID = "deliverables"

	// Reports & Chat
	reportCmd := cmd.NewReportCommand(nil)
	reportCmd.GroupID = "ai"
	chatCmd := cmd.NewChatCommand(nil)
	chatCmd.GroupID = "ai"

	// Setup
	authCmd := cmd.NewAuthCommand(nil)
	authCmd.GroupID = "setup"
	configCmd.GroupID = "setup"
	versionCmd.GroupID = "setup"
	completionCmd.GroupID = "setup"

	rootCmd.AddCommand(
		dashboardCmd, meetingsCmd, statsCmd, exportCmd,
		reportCmd, chatCmd,
		authCmd, configCmd, versionCmd, completionCmd,
	)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = metricsServer.Shutdown(shutdownCtx)
		cancel()
	}

	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes err and, for model failures, the suggested next step.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if eerrors.IsValidation(err) || eerrors.IsNotFound(err) || eerrors.IsUnknownReportType(err) {
		return
	}
	if eerrors.IsMissingAPIKey(err) {
		fmt.Fprintln(w, "Cadastre a chave com 'entregaveis auth login' ou defina GEMINI_API_KEY.")
		return
	}
	ae := eerrors.ClassifyError(err, "")
	if ae.Code != eerrors.ErrProcessingError {
		fmt.Fprintln(w, eerrors.GetSuggestedAction(ae.Code))
	}
}

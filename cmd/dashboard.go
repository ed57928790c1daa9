package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/entregaveis/config"
	"github.com/otherjamesbrown/entregaveis/internal/dashboard"
	"github.com/otherjamesbrown/entregaveis/pkg/chat"
	"github.com/otherjamesbrown/entregaveis/pkg/corpus"
	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
	"github.com/otherjamesbrown/entregaveis/pkg/logging"
	"github.com/otherjamesbrown/entregaveis/pkg/observability"
	"github.com/otherjamesbrown/entregaveis/pkg/reports"
	"github.com/otherjamesbrown/entregaveis/pkg/session"
)

// dashboardLogFile receives logs while the terminal is in alt-screen mode.
const dashboardLogFile = "dashboard.log"

// DashboardCommandDeps holds the dependencies for the dashboard command.
type DashboardCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	ResolveKey KeyResolver
	NewModel   ModelFactory
	Metrics    *observability.Metrics
	// Run starts the program; tests replace it to inspect the initial model.
	Run func(m tea.Model) error
}

// DefaultDashboardDeps returns the default dependencies for production use.
func DefaultDashboardDeps() *DashboardCommandDeps {
	return &DashboardCommandDeps{
		LoadConfig: config.LoadConfig,
		ResolveKey: DefaultKeyResolver(),
		NewModel:   DefaultModelFactory(),
		Run: func(m tea.Model) error {
			_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

// NewDashboardCommand creates the dashboard command.
func NewDashboardCommand(deps *DashboardCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultDashboardDeps()
	}

	var dir string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive dashboard",
		Long: `Open the interactive terminal dashboard.

Pages:
  1 Início        counts and archive export
  2 Transcrições  read transcripts
  3 Análise       workbook metrics and charts
  4 Relatórios    AI reports, saved as HTML and JSON in the current directory
  5 Chat          questions over the transcripts

Without an API key the dashboard opens with reports and chat disabled.
Logs are written to ~/.entregaveis/dashboard.log while it runs.

Examples:
  entregaveis dashboard
  entregaveis dashboard --dir ./saidas`,
		Aliases: []string{"ui"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), deps, dir)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default from config)")

	return cmd
}

func runDashboard(ctx context.Context, deps *DashboardCommandDeps, dirFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(deps.Config, deps.LoadConfig)
	if err != nil {
		return err
	}
	dir, err := outputDir(cfg, dirFlag)
	if err != nil {
		return err
	}
	mode, err := reports.ParseMode(cfg.ReportMode)
	if err != nil {
		return err
	}

	logger, closeLog := dashboardLogger(cfg)
	defer closeLog()
	previous := logging.MustGlobal()
	logging.SetGlobal(logger)
	defer logging.SetGlobal(previous)

	sess := session.New()
	d := dashboard.Deps{
		OutputDir:  dir,
		ReportMode: mode,
		Loader:     corpus.NewLoader(logger),
		Session:    sess,
		Logger:     logger,
		Context:    ctx,
	}

	key, src, err := deps.ResolveKey()
	switch {
	case err == nil:
		model, err := deps.NewModel(cfg, key)
		if err != nil {
			return err
		}
		sess.SetAPIKey(key, src)
		d.Generator = reports.NewGenerator(model, logger, deps.Metrics)
		d.Answerer = chat.NewAnswerer(model, logger, deps.Metrics)
	case eerrors.IsMissingAPIKey(err):
		logger.Info("Dashboard started without API key")
	default:
		return err
	}

	logger.Info("Dashboard started", logging.F("dir", dir), logging.F("has_key", sess.HasAPIKey()))
	if err := deps.Run(dashboard.New(d)); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

// dashboardLogger writes JSON logs to a file in the config directory, or
// discards them when the file cannot be opened.
func dashboardLogger(cfg *config.CLIConfig) (logging.Logger, func()) {
	dir, err := config.ConfigDir()
	if err != nil {
		return logging.NewNopLogger(), func() {}
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return logging.NewNopLogger(), func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, dashboardLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return logging.NewNopLogger(), func() {}
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if cfg.Debug {
		level = logging.LevelDebug
	}
	logger := logging.NewLogger(&logging.Config{
		Level:       level,
		ServiceName: "entregaveis",
		Environment: "dashboard",
		JSONFormat:  true,
		Output:      f,
	})
	return logger, func() { f.Close() }
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/entregaveis/config"
	"github.com/otherjamesbrown/entregaveis/internal/ui"
	"github.com/otherjamesbrown/entregaveis/pkg/deliverables"
	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
	"github.com/otherjamesbrown/entregaveis/pkg/stats"
)

// statsWidth is the chart width for text output.
const statsWidth = 80

// StatsCommandDeps holds the dependencies for the stats command.
type StatsCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultStatsDeps returns the default dependencies for production use.
func DefaultStatsDeps() *StatsCommandDeps {
	return &StatsCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(deps *StatsCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultStatsDeps()
	}

	var dir, output, sheet string

	cmd := &cobra.Command{
		Use:   "stats <meeting|file.xlsx>",
		Short: "Analyze a statistics workbook",
		Long: `Compute participation metrics from a meeting's statistics workbook.

Two layouts are recognized from the header row:
  - conversation (timestamp, speaker, text)
  - production (locutor, inicio, fim, duracao, palavras)
Any other layout prints its columns only.

Examples:
  entregaveis stats kickoff
  entregaveis stats ./saidas/excel_kickoff.xlsx --sheet Falas
  entregaveis stats kickoff -o json`,
		Aliases: []string{"analysis"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.OutOrStdout(), deps, dir, output, args[0], sheet)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: text, json, yaml")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to analyze (default: first sheet)")

	return cmd
}

func runStats(w io.Writer, deps *StatsCommandDeps, dirFlag, outputFlag, arg, sheet string) error {
	cfg, err := loadConfig(deps.Config, deps.LoadConfig)
	if err != nil {
		return err
	}
	format, err := outputFormat(cfg, outputFlag)
	if err != nil {
		return err
	}
	dir, err := outputDir(cfg, dirFlag)
	if err != nil {
		return err
	}

	path, err := findWorkbook(dir, arg)
	if err != nil {
		return err
	}

	var table *stats.Table
	if sheet != "" {
		table, err = stats.LoadSheet(path, sheet)
	} else {
		table, err = stats.LoadTable(path)
	}
	if err != nil {
		return err
	}

	analysis := stats.Analyze(table)
	if ok, err := writeStructured(w, format, analysis); ok {
		return err
	}

	fmt.Fprintf(w, "%s (%s)\n\n", deliverables.DisplayName(filepath.Base(path)), table.Sheet)
	fmt.Fprint(w, ui.RenderAnalysis(analysis, statsWidth))
	return nil
}

// findWorkbook accepts a path to an .xlsx file or a meeting name.
func findWorkbook(dir, arg string) (string, error) {
	if strings.HasSuffix(strings.ToLower(arg), ".xlsx") {
		if _, err := os.Stat(arg); err == nil {
			return arg, nil
		}
	}
	listing, err := deliverables.Scan(dir)
	if err != nil {
		return "", err
	}
	if e, ok := listing.Find(deliverables.KindStatistics, arg); ok {
		return e.Path, nil
	}
	return "", fmt.Errorf("%w: no statistics workbook for meeting %s", eerrors.ErrNotFound, strconv.Quote(arg))
}

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/entregaveis/config"
	"github.com/otherjamesbrown/entregaveis/pkg/corpus"
	"github.com/otherjamesbrown/entregaveis/pkg/deliverables"
)

// ExportCommandDeps holds the dependencies for the export command.
type ExportCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
}

// DefaultExportDeps returns the default dependencies for production use.
func DefaultExportDeps() *ExportCommandDeps {
	return &ExportCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

// exportResult is the structured output of an export.
type exportResult struct {
	Path  string `json:"path" yaml:"path"`
	Files int    `json:"files" yaml:"files"`
}

// NewExportCommand creates the export command.
func NewExportCommand(deps *ExportCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultExportDeps()
	}

	var dir, out, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Zip every deliverable in the output directory",
		Long: `Write a zip archive of every file under the output directory.

Entry names are relative to the output directory.

Examples:
  entregaveis export
  entregaveis export --out /tmp/entregaveis.zip`,
		Aliases: []string{"zip"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.OutOrStdout(), deps, dir, out, output)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default from config)")
	cmd.Flags().StringVar(&out, "out", corpus.ArchiveName, "Archive path")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: text, json, yaml")

	return cmd
}

func runExport(w io.Writer, deps *ExportCommandDeps, dirFlag, out, outputFlag string) error {
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
	if _, err := deliverables.Scan(dir); err != nil {
		return err
	}

	n, err := corpus.ArchiveFile(dir, out)
	if err != nil {
		return err
	}

	res := exportResult{Path: out, Files: n}
	if ok, err := writeStructured(w, format, res); ok {
		return err
	}
	fmt.Fprintf(w, "%d arquivos exportados em %s\n", n, out)
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/entregaveis/config"
	"github.com/otherjamesbrown/entregaveis/pkg/corpus"
	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
	"github.com/otherjamesbrown/entregaveis/pkg/logging"
	"github.com/otherjamesbrown/entregaveis/pkg/observability"
	"github.com/otherjamesbrown/entregaveis/pkg/reports"
	"github.com/otherjamesbrown/entregaveis/pkg/session"
)

// Report output formats.
const (
	reportFormatMarkdown = "markdown"
	reportFormatHTML     = "html"
	reportFormatJSON     = "json"
)

// ReportCommandDeps holds the dependencies for the report command.
type ReportCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	Loader     *corpus.Loader
	ResolveKey KeyResolver
	NewModel   ModelFactory
	Logger     logging.Logger
	Metrics    *observability.Metrics
	Now        func() time.Time
}

// DefaultReportDeps returns the default dependencies for production use.
func DefaultReportDeps() *ReportCommandDeps {
	return &ReportCommandDeps{
		LoadConfig: config.LoadConfig,
		ResolveKey: DefaultKeyResolver(),
		NewModel:   DefaultModelFactory(),
		Now:        time.Now,
	}
}

// reportOptions are the parsed flags of one report run.
type reportOptions struct {
	dir    string
	typ    string
	mode   string
	format string
	excel  bool
	out    string
}

// NewReportCommand creates the report command.
func NewReportCommand(deps *ReportCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultReportDeps()
	}

	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report <meeting>",
		Short: "Generate an AI report for a meeting",
		Long: `Generate a report for a meeting with the Gemini model.

Report types:
  resumo            Resumo Conciso
  resumo_expandido  Resumo Expandido
  insights          Insights e Recomendações
  ata               Ata Formal
  pontos_acao       Pontos de Ação

Modes:
  text        the model answers in free text; boilerplate lead-ins are removed
  structured  the model answers in JSON following a fixed shape per type

The source is the meeting transcript, or its statistics workbook with --excel.
Each run makes exactly one model call.

Examples:
  entregaveis report kickoff
  entregaveis report kickoff --type ata --mode structured
  entregaveis report kickoff --type insights --excel --format html --out .`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), deps, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", "", "Output directory (default from config)")
	cmd.Flags().StringVarP(&opts.typ, "type", "t", string(reports.TypeResumo), "Report type")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Report mode: text or structured (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", reportFormatMarkdown, "Output format: markdown, html, json")
	cmd.Flags().BoolVar(&opts.excel, "excel", false, "Use the statistics workbook as the source")
	cmd.Flags().StringVar(&opts.out, "out", "", "Write to this file or directory instead of stdout")

	return cmd
}

func runReport(ctx context.Context, w, errw io.Writer, deps *ReportCommandDeps, opts reportOptions, meeting string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(deps.Config, deps.LoadConfig)
	if err != nil {
		return err
	}

	t, err := reports.ParseType(opts.typ)
	if err != nil {
		return err
	}
	modeFlag := opts.mode
	if modeFlag == "" {
		modeFlag = cfg.ReportMode
	}
	mode, err := reports.ParseMode(modeFlag)
	if err != nil {
		return err
	}
	format := strings.ToLower(opts.format)
	switch format {
	case reportFormatMarkdown, reportFormatHTML, reportFormatJSON:
	default:
		return fmt.Errorf("%w: invalid format %q (must be markdown, html, or json)", eerrors.ErrValidation, opts.format)
	}

	dir, err := outputDir(cfg, opts.dir)
	if err != nil {
		return err
	}
	source, err := reportSource(deps, dir, meeting, opts.excel)
	if err != nil {
		return err
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.MustGlobal()
	}
	sess := session.New()
	key, src, err := deps.ResolveKey()
	if err != nil {
		return err
	}
	sess.SetAPIKey(key, src)
	model, err := deps.NewModel(cfg, key)
	if err != nil {
		return err
	}

	gen := reports.NewGenerator(model, logger, deps.Metrics)
	fmt.Fprintln(errw, "Gerando relatório... Isso pode levar alguns instantes.")
	result, err := gen.Generate(sess.Context(ctx), reports.Request{
		Type:        t,
		Mode:        mode,
		MeetingName: meeting,
		SourceText:  source,
	})
	if err != nil {
		var pe *reports.ParseError
		if errors.As(err, &pe) && pe.Raw != "" {
			fmt.Fprintln(errw, "Resposta recebida:")
			fmt.Fprintln(errw, pe.Raw)
		}
		return err
	}
	sess.SetReport(result)

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	body, name, err := renderReport(result, format, now())
	if err != nil {
		return err
	}

	if opts.out == "" || opts.out == "-" {
		_, err := w.Write(body)
		return err
	}
	path := opts.out
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, name)
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Fprintf(w, "Relatório salvo em %s\n", path)
	return nil
}

// reportSource returns the transcript text or the workbook dump for a meeting.
func reportSource(deps *ReportCommandDeps, dir, meeting string, excel bool) (string, error) {
	if excel {
		path, err := findWorkbook(dir, meeting)
		if err != nil {
			return "", err
		}
		return reports.SourceFromWorkbook(path)
	}

	loader := deps.Loader
	if loader == nil {
		loader = corpus.NewLoader(logging.MustGlobal())
	}
	c, err := loader.Load(dir)
	if err != nil {
		return "", err
	}
	doc, ok := c.Get(meeting)
	if !ok {
		return "", fmt.Errorf("%w: no transcript for meeting %s", eerrors.ErrNotFound, strconv.Quote(meeting))
	}
	return reports.SourceFromTranscript(doc), nil
}

// renderReport returns the report bytes and the default filename for format.
func renderReport(r *reports.Result, format string, now time.Time) ([]byte, string, error) {
	switch format {
	case reportFormatHTML:
		page, err := reports.RenderHTML(r, now)
		if err != nil {
			return nil, "", err
		}
		return []byte(page), reports.HTMLFilename(r.Type, r.MeetingName), nil
	case reportFormatJSON:
		doc, err := reports.JSONDocument(r)
		if err != nil {
			return nil, "", err
		}
		return doc, reports.JSONFilename(r.Type, r.MeetingName), nil
	default:
		md := fmt.Sprintf("# Relatório: %s - %s\n\n%s", r.MeetingName, r.Title, reports.RenderMarkdown(r))
		if !strings.HasSuffix(md, "\n") {
			md += "\n"
		}
		name := strings.TrimSuffix(reports.HTMLFilename(r.Type, r.MeetingName), ".html") + ".md"
		return []byte(md), name, nil
	}
}

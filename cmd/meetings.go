package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/entregaveis/config"
	"github.com/otherjamesbrown/entregaveis/internal/ui"
	"github.com/otherjamesbrown/entregaveis/pkg/corpus"
	"github.com/otherjamesbrown/entregaveis/pkg/deliverables"
	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
	"github.com/otherjamesbrown/entregaveis/pkg/logging"
)

// MeetingsCommandDeps holds the dependencies for meetings commands.
type MeetingsCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	Loader     *corpus.Loader
}

// DefaultMeetingsDeps returns the default dependencies for production use.
func DefaultMeetingsDeps() *MeetingsCommandDeps {
	return &MeetingsCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

func (d *MeetingsCommandDeps) loader() *corpus.Loader {
	if d.Loader == nil {
		d.Loader = corpus.NewLoader(logging.MustGlobal())
	}
	return d.Loader
}

// NewMeetingsCommand creates the meetings command with its subcommands.
func NewMeetingsCommand(deps *MeetingsCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultMeetingsDeps()
	}

	var dir, output string

	cmd := &cobra.Command{
		Use:   "meetings",
		Short: "List and read meeting transcripts",
		Long: `List the deliverables in the output directory and read transcripts.

The output directory holds one html_{meeting}.html transcript and one
excel_{meeting}.xlsx statistics workbook per meeting. Files that do not follow
this naming are listed but not loaded.`,
		Aliases: []string{"transcripts"},
	}

	cmd.PersistentFlags().StringVar(&dir, "dir", "", "Output directory (default from config)")
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format: text, json, yaml")

	cmd.AddCommand(newMeetingsListCommand(deps, &dir, &output))
	cmd.AddCommand(newMeetingsShowCommand(deps, &dir, &output))

	return cmd
}

func newMeetingsListCommand(deps *MeetingsCommandDeps, dir, output *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List transcripts and statistics workbooks",
		Long: `List the transcripts and statistics workbooks found in the output directory.

Examples:
  entregaveis meetings list
  entregaveis meetings list --dir ./saidas -o json`,
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeetingsList(cmd.OutOrStdout(), deps, *dir, *output)
		},
	}
}

func runMeetingsList(w io.Writer, deps *MeetingsCommandDeps, dirFlag, outputFlag string) error {
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

	listing, err := deliverables.Scan(dir)
	if err != nil {
		return err
	}
	if ok, err := writeStructured(w, format, listing); ok {
		return err
	}

	fmt.Fprintf(w, "Diretório: %s\n", listing.Dir)
	fmt.Fprintf(w, "Transcrições (HTML): %d   Planilhas (Excel): %d\n\n", listing.TranscriptCount(), listing.StatisticsCount())
	if listing.TranscriptCount()+listing.StatisticsCount() == 0 {
		fmt.Fprintln(w, "Nenhum entregável encontrado.")
		return nil
	}

	var rows [][]string
	for _, group := range [][]deliverables.Entry{listing.Transcripts, listing.Statistics} {
		for _, e := range group {
			kind := "-"
			if e.Parsed {
				kind = e.Kind.Label()
			}
			rows = append(rows, []string{e.DisplayName, kind, e.Name, humanSize(e.Size)})
		}
	}
	fmt.Fprintln(w, ui.Table([]string{"REUNIÃO", "TIPO", "ARQUIVO", "TAMANHO"}, rows))
	return nil
}

func newMeetingsShowCommand(deps *MeetingsCommandDeps, dir, output *string) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <meeting>",
		Short: "Print a transcript",
		Long: `Print the transcript of a meeting as plain text.

With --raw the original HTML is printed with speaker names highlighted.

Examples:
  entregaveis meetings show kickoff
  entregaveis meetings show kickoff --raw > kickoff.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeetingsShow(cmd.OutOrStdout(), deps, *dir, *output, args[0], raw)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the HTML markup instead of plain text")

	return cmd
}

func runMeetingsShow(w io.Writer, deps *MeetingsCommandDeps, dirFlag, outputFlag, meeting string, raw bool) error {
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

	c, err := deps.loader().Load(dir)
	if err != nil {
		return err
	}
	doc, ok := c.Get(meeting)
	if !ok {
		return fmt.Errorf("%w: no transcript for meeting %s", eerrors.ErrNotFound, strconv.Quote(meeting))
	}

	if ok, err := writeStructured(w, format, doc); ok {
		return err
	}
	if raw {
		fmt.Fprintln(w, corpus.HighlightSpeakers(doc.RawMarkup))
		return nil
	}
	fmt.Fprintln(w, doc.PlainText)
	return nil
}

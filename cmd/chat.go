package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/entregaveis/config"
	"github.com/otherjamesbrown/entregaveis/pkg/chat"
	"github.com/otherjamesbrown/entregaveis/pkg/corpus"
	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
	"github.com/otherjamesbrown/entregaveis/pkg/logging"
	"github.com/otherjamesbrown/entregaveis/pkg/observability"
	"github.com/otherjamesbrown/entregaveis/pkg/session"
)

// ChatCommandDeps holds the dependencies for the chat command.
type ChatCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	Loader     *corpus.Loader
	ResolveKey KeyResolver
	NewModel   ModelFactory
	Logger     logging.Logger
	Metrics    *observability.Metrics
	In         io.Reader
}

// DefaultChatDeps returns the default dependencies for production use.
func DefaultChatDeps() *ChatCommandDeps {
	return &ChatCommandDeps{
		LoadConfig: config.LoadConfig,
		ResolveKey: DefaultKeyResolver(),
		NewModel:   DefaultModelFactory(),
		In:         os.Stdin,
	}
}

// quitWords end an interactive chat.
var quitWords = map[string]bool{"sair": true, "exit": true, "quit": true}

// NewChatCommand creates the chat command.
func NewChatCommand(deps *ChatCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultChatDeps()
	}

	var (
		dir         string
		meetings    []string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask questions about the meeting transcripts",
		Long: `Ask free-form questions answered by the Gemini model over the transcripts.

Without --meeting the whole corpus is sent. One --meeting sends that transcript
(up to 15000 characters); several send each one up to 5000 characters.

With --interactive questions are read from stdin until EOF or "sair", and the
conversation history is kept for the session.

Examples:
  entregaveis chat "Quais foram as decisões principais?"
  entregaveis chat "Quem ficou com as tarefas?" --meeting kickoff --meeting retro
  entregaveis chat --interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			return runChat(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), deps, dir, question, meetings, interactive)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default from config)")
	cmd.Flags().StringArrayVar(&meetings, "meeting", nil, "Restrict the context to a meeting (repeatable)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Read questions from stdin")

	return cmd
}

func runChat(ctx context.Context, w, errw io.Writer, deps *ChatCommandDeps, dirFlag, question string, meetings []string, interactive bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !interactive && strings.TrimSpace(question) == "" {
		return fmt.Errorf("%w: Por favor, digite uma pergunta.", eerrors.ErrValidation)
	}

	cfg, err := loadConfig(deps.Config, deps.LoadConfig)
	if err != nil {
		return err
	}
	dir, err := outputDir(cfg, dirFlag)
	if err != nil {
		return err
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.MustGlobal()
	}
	loader := deps.Loader
	if loader == nil {
		loader = corpus.NewLoader(logger)
	}
	c, err := loader.Load(dir)
	if err != nil {
		return err
	}
	if c.Len() == 0 {
		return fmt.Errorf("%w: Nenhum documento encontrado no diretório '%s'", eerrors.ErrNotFound, dir)
	}
	if deps.Metrics != nil {
		deps.Metrics.SetCorpusDocuments(c.Len())
	}

	key, src, err := deps.ResolveKey()
	if err != nil {
		return err
	}
	sess := session.New()
	sess.SetAPIKey(key, src)
	model, err := deps.NewModel(cfg, key)
	if err != nil {
		return err
	}
	answerer := chat.NewAnswerer(model, logger, deps.Metrics)
	ctx = sess.Context(ctx)

	if !interactive {
		turn, err := answerer.Ask(ctx, sess.History, question, c, meetings)
		if turn.Content != "" {
			fmt.Fprintln(w, turn.Content)
		}
		return err
	}

	in := deps.In
	if in == nil {
		in = os.Stdin
	}
	fmt.Fprintf(errw, "%d documentos carregados. Digite sua pergunta (\"sair\" para terminar).\n", c.Len())
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(errw, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(errw)
			break
		}
		q := strings.TrimSpace(scanner.Text())
		if quitWords[strings.ToLower(q)] {
			break
		}
		if q == "" {
			fmt.Fprintln(errw, "Por favor, digite uma pergunta.")
			continue
		}
		turn, err := answerer.Ask(ctx, sess.History, q, c, meetings)
		if err != nil {
			logger.Debug("Chat question failed", logging.Err(err))
		}
		fmt.Fprintln(w, turn.Content)
		fmt.Fprintln(w)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading questions: %w", err)
	}
	return nil
}

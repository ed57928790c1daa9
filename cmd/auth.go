package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/entregaveis/config"
	"github.com/otherjamesbrown/entregaveis/credentials"
)

// minAPIKeyLength rejects obviously truncated keys.
const minAPIKeyLength = 20

// SecretStore is the part of credentials.Store the auth commands use.
type SecretStore interface {
	Get(name string) (string, error)
	Set(name, value string) error
	Delete(name string) error
	Path() string
	KeyDescription() string
	LastUpdated() (time.Time, error)
}

// AuthCommandDeps holds the dependencies for auth commands.
type AuthCommandDeps struct {
	OpenStore func() (SecretStore, error)
	Getenv    func(string) string
	// Prompt reads a key interactively; nil disables prompting.
	Prompt credentials.PromptFunc
}

// DefaultAuthDeps returns the default dependencies for production use.
func DefaultAuthDeps() *AuthCommandDeps {
	return &AuthCommandDeps{
		OpenStore: func() (SecretStore, error) { return credentials.NewStore() },
		Getenv:    os.Getenv,
		Prompt:    credentials.TerminalPrompt(os.Stdin, os.Stderr),
	}
}

// authStatus is the structured output of auth status.
type authStatus struct {
	Configured  bool   `json:"configured" yaml:"configured"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
	EnvVar      string `json:"env_var,omitempty" yaml:"env_var,omitempty"`
	MaskedKey   string `json:"masked_key,omitempty" yaml:"masked_key,omitempty"`
	StorePath   string `json:"store_path,omitempty" yaml:"store_path,omitempty"`
	KeyStorage  string `json:"key_storage,omitempty" yaml:"key_storage,omitempty"`
	LastUpdated string `json:"last_updated,omitempty" yaml:"last_updated,omitempty"`
}

// NewAuthCommand creates the auth command with its subcommands.
func NewAuthCommand(deps *AuthCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultAuthDeps()
	}

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Gemini API key",
		Long: `Manage the Gemini API key used for reports and chat.

The key is looked up in this order:
  1. ENTREGAVEIS_GEMINI_API_KEY or GEMINI_API_KEY
  2. the encrypted store in ~/.entregaveis/credentials.yaml
  3. a prompt on the terminal, kept only for the current session

The store is encrypted with AES-GCM. The encryption key comes from
ENTREGAVEIS_ENCRYPTION_KEY (64 hex chars), else from ENTREGAVEIS_PASSPHRASE
(Argon2id with a salt in ~/.entregaveis/credentials.salt), else from the
system keyring.`,
	}

	cmd.AddCommand(newAuthLoginCommand(deps))
	cmd.AddCommand(newAuthLogoutCommand(deps))
	cmd.AddCommand(newAuthStatusCommand(deps))

	return cmd
}

func newAuthLoginCommand(deps *AuthCommandDeps) *cobra.Command {
	var (
		apiKey         string
		nonInteractive bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the Gemini API key",
		Long: `Store the Gemini API key in the encrypted credentials file.

Examples:
  # Prompt for the key (input is hidden)
  entregaveis auth login

  # Pass the key directly
  entregaveis auth login --api-key AIza...

  # Store the key currently in the environment
  GEMINI_API_KEY=AIza... entregaveis auth login`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogin(cmd.OutOrStdout(), deps, apiKey, nonInteractive)
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Gemini API key")
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Fail instead of prompting for input")

	return cmd
}

func runAuthLogin(w io.Writer, deps *AuthCommandDeps, apiKey string, nonInteractive bool) error {
	key := strings.TrimSpace(apiKey)

	if key == "" {
		if name, v := envKey(deps.Getenv); v != "" {
			key = v
			fmt.Fprintf(w, "Usando a chave da variável %s\n", name)
		}
	}

	if key == "" {
		if nonInteractive || deps.Prompt == nil {
			return fmt.Errorf("no API key provided and --non-interactive flag set")
		}
		prompted, err := deps.Prompt()
		if err != nil {
			return fmt.Errorf("reading API key: %w", err)
		}
		key = strings.TrimSpace(prompted)
	}

	if err := validateAPIKey(key); err != nil {
		return fmt.Errorf("invalid API key: %w", err)
	}

	store, err := deps.OpenStore()
	if err != nil {
		return fmt.Errorf("initializing credential store: %w", err)
	}
	if err := store.Set(credentials.GeminiAPIKeyName, key); err != nil {
		return fmt.Errorf("saving API key: %w", err)
	}

	fmt.Fprintln(w, "Chave salva com sucesso.")
	fmt.Fprintf(w, "  Chave:   %s\n", credentials.MaskAPIKey(key))
	fmt.Fprintf(w, "  Arquivo: %s\n", store.Path())
	return nil
}

func newAuthLogoutCommand(deps *AuthCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored Gemini API key",
		Long: `Remove the Gemini API key from the encrypted credentials file.

Environment variables are not affected.

Examples:
  entregaveis auth logout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogout(cmd.OutOrStdout(), deps)
		},
	}
}

func runAuthLogout(w io.Writer, deps *AuthCommandDeps) error {
	store, err := deps.OpenStore()
	if err != nil {
		return fmt.Errorf("initializing credential store: %w", err)
	}

	_, err = store.Get(credentials.GeminiAPIKeyName)
	if errors.Is(err, credentials.ErrNoSecret) {
		fmt.Fprintln(w, "Nenhuma chave armazenada.")
		return nil
	}
	if err := store.Delete(credentials.GeminiAPIKeyName); err != nil {
		return fmt.Errorf("removing API key: %w", err)
	}

	fmt.Fprintln(w, "Chave removida.")
	if name, v := envKey(deps.Getenv); v != "" {
		fmt.Fprintf(w, "Atenção: %s ainda está definida e continuará sendo usada.\n", name)
	}
	return nil
}

func newAuthStatusCommand(deps *AuthCommandDeps) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show where the Gemini API key comes from",
		Long: `Show whether a Gemini API key is available and where it comes from.

Examples:
  entregaveis auth status
  entregaveis auth status -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthStatus(cmd.OutOrStdout(), deps, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: text, json, yaml")

	return cmd
}

func runAuthStatus(w io.Writer, deps *AuthCommandDeps, outputFlag string) error {
	format := config.OutputFormatText
	if outputFlag != "" {
		format = config.OutputFormat(strings.ToLower(outputFlag))
		if !format.IsValid() {
			return fmt.Errorf("invalid output format %q (must be text, json, or yaml)", outputFlag)
		}
	}

	st := authStatus{}
	if name, v := envKey(deps.Getenv); v != "" {
		st.Configured = true
		st.Source = string(credentials.SourceEnv)
		st.EnvVar = name
		st.MaskedKey = credentials.MaskAPIKey(v)
	}

	if store, err := deps.OpenStore(); err == nil {
		st.StorePath = store.Path()
		st.KeyStorage = store.KeyDescription()
		if key, err := store.Get(credentials.GeminiAPIKeyName); err == nil && key != "" {
			if !st.Configured {
				st.Configured = true
				st.Source = string(credentials.SourceStore)
				st.MaskedKey = credentials.MaskAPIKey(key)
			}
			if t, err := store.LastUpdated(); err == nil && !t.IsZero() {
				st.LastUpdated = t.Format(time.RFC3339)
			}
		}
	}

	if ok, err := writeStructured(w, format, st); ok {
		return err
	}

	if !st.Configured {
		fmt.Fprintln(w, "Chave da API Gemini: não configurada")
		fmt.Fprintln(w, "Use 'entregaveis auth login' ou defina GEMINI_API_KEY.")
		return nil
	}
	fmt.Fprintln(w, "Chave da API Gemini: configurada")
	fmt.Fprintf(w, "  Origem:  %s", st.Source)
	if st.EnvVar != "" {
		fmt.Fprintf(w, " (%s)", st.EnvVar)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Chave:   %s\n", st.MaskedKey)
	if st.StorePath != "" {
		fmt.Fprintf(w, "  Arquivo: %s\n", st.StorePath)
	}
	if st.LastUpdated != "" {
		fmt.Fprintf(w, "  Atualizada em: %s\n", st.LastUpdated)
	}
	return nil
}

// envKey returns the first API key environment variable that is set.
func envKey(getenv func(string) string) (string, string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, name := range credentials.APIKeyEnvVars {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return name, v
		}
	}
	return "", ""
}

// validateAPIKey checks the key looks usable.
func validateAPIKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("API key is empty")
	case len(key) < minAPIKeyLength:
		return fmt.Errorf("API key is too short")
	case strings.ContainsAny(key, " \t\r\n"):
		return fmt.Errorf("API key contains whitespace")
	}
	return nil
}

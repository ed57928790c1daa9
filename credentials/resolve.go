package credentials

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
)

// Environment variables checked for the model API key, in order.
var APIKeyEnvVars = []string{"ENTREGAVEIS_GEMINI_API_KEY", "GEMINI_API_KEY"}

// Source records where a resolved API key came from.
type Source string

const (
	SourceEnv    Source = "env"
	SourceStore  Source = "store"
	SourcePrompt Source = "prompt"
)

// SecretGetter is the read side of Store.
type SecretGetter interface {
	Get(name string) (string, error)
}

// PromptFunc asks the operator for a key. It returns "" when nothing was entered.
type PromptFunc func() (string, error)

// Resolver finds the API key: environment, then the encrypted store, then
// an interactive prompt whose answer lives only for the session.
type Resolver struct {
	Getenv func(string) string
	Store  SecretGetter
	Prompt PromptFunc
}

// DefaultResolver uses the process environment, the default store when it
// can be opened, and a terminal prompt on stdin.
func DefaultResolver() *Resolver {
	r := &Resolver{
		Getenv: os.Getenv,
		Prompt: TerminalPrompt(os.Stdin, os.Stderr),
	}
	if store, err := NewStore(); err == nil {
		r.Store = store
	}
	return r
}

// Resolve returns the key and its source. A missing key is ErrMissingAPIKey.
func (r *Resolver) Resolve() (string, Source, error) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, name := range APIKeyEnvVars {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return v, SourceEnv, nil
		}
	}

	if r.Store != nil {
		key, err := r.Store.Get(GeminiAPIKeyName)
		switch {
		case err == nil && strings.TrimSpace(key) != "":
			return strings.TrimSpace(key), SourceStore, nil
		case err != nil && !errors.Is(err, ErrNoSecret):
			return "", "", fmt.Errorf("reading stored API key: %w", err)
		}
	}

	if r.Prompt != nil {
		key, err := r.Prompt()
		if err != nil {
			return "", "", fmt.Errorf("reading API key: %w", err)
		}
		if key = strings.TrimSpace(key); key != "" {
			return key, SourcePrompt, nil
		}
	}

	return "", "", eerrors.ErrMissingAPIKey
}

// TerminalPrompt reads the key with echo disabled when in is a terminal,
// falling back to a plain line read otherwise.
func TerminalPrompt(in *os.File, out io.Writer) PromptFunc {
	return func() (string, error) {
		fmt.Fprint(out, "Chave da API Gemini (Enter para cancelar): ")
		fd := int(in.Fd())
		if term.IsTerminal(fd) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(out)
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(string(b)), nil
		}
		return ReadLine(in)
	}
}

// ReadLine reads one line from r and trims it.
func ReadLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

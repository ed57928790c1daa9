// Package session holds the per-user state of one run: the API key, the
// report on display, the chat history and the in-flight action guard.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/otherjamesbrown/entregaveis/credentials"
	"github.com/otherjamesbrown/entregaveis/pkg/chat"
	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
	"github.com/otherjamesbrown/entregaveis/pkg/logging"
	"github.com/otherjamesbrown/entregaveis/pkg/reports"
)

// Session is passed explicitly to every handler.
type Session struct {
	ID        string
	StartedAt time.Time
	History   *chat.History

	mu        sync.Mutex
	apiKey    string
	keySource credentials.Source
	report    *reports.Result
	busy      string
}

// New creates a session with a fresh ID.
func New() *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		History:   &chat.History{},
	}
}

// Context tags ctx with the session ID for logging.
func (s *Session) Context(ctx context.Context) context.Context {
	return context.WithValue(ctx, logging.SessionIDKey, s.ID)
}

// SetAPIKey stores the key for this session only.
func (s *Session) SetAPIKey(key string, source credentials.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = key
	s.keySource = source
}

// APIKey returns the session key and where it came from.
func (s *Session) APIKey() (string, credentials.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKey, s.keySource
}

// HasAPIKey reports whether model actions are available.
func (s *Session) HasAPIKey() bool {
	key, _ := s.APIKey()
	return key != ""
}

// SetReport replaces the report on display. nil clears it.
func (s *Session) SetReport(r *reports.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = r
}

// Report returns the report on display, if any.
func (s *Session) Report() *reports.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// TryBegin marks action as in flight. It fails with ErrBusy while another
// action runs.
func (s *Session) TryBegin(action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy != "" {
		return fmt.Errorf("%w: %s", eerrors.ErrBusy, s.busy)
	}
	s.busy = action
	return nil
}

// End clears the in-flight action.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = ""
}

// Busy returns the running action, or "".
func (s *Session) Busy() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

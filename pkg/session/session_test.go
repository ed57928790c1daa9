package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/entregaveis/credentials"
	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
	"github.com/otherjamesbrown/entregaveis/pkg/logging"
	"github.com/otherjamesbrown/entregaveis/pkg/reports"
)

func TestNew(t *testing.T) {
	s := New()

	_, err := uuid.Parse(s.ID)
	assert.NoError(t, err)
	assert.NotNil(t, s.History)
	assert.False(t, s.HasAPIKey())
	assert.Nil(t, s.Report())
	assert.NotEqual(t, s.ID, New().ID)
}

func TestSession_Context(t *testing.T) {
	s := New()
	ctx := s.Context(context.Background())
	assert.Equal(t, s.ID, ctx.Value(logging.SessionIDKey))
}

func TestSession_APIKey(t *testing.T) {
	s := New()
	s.SetAPIKey("abc", credentials.SourcePrompt)

	key, src := s.APIKey()
	assert.Equal(t, "abc", key)
	assert.Equal(t, credentials.SourcePrompt, src)
	assert.True(t, s.HasAPIKey())
}

func TestSession_ReportReplacedWholesale(t *testing.T) {
	s := New()
	first := &reports.Result{ID: "1"}
	second := &reports.Result{ID: "2"}

	s.SetReport(first)
	s.SetReport(second)
	assert.Equal(t, "2", s.Report().ID)

	s.SetReport(nil)
	assert.Nil(t, s.Report())
}

func TestSession_BusyGuard(t *testing.T) {
	s := New()

	require.NoError(t, s.TryBegin("report"))
	assert.Equal(t, "report", s.Busy())

	err := s.TryBegin("chat")
	require.Error(t, err)
	assert.True(t, eerrors.IsBusy(err))
	assert.Contains(t, err.Error(), "report")

	s.End()
	assert.Equal(t, "", s.Busy())
	assert.NoError(t, s.TryBegin("chat"))
}

func TestSession_BusyGuardConcurrent(t *testing.T) {
	s := New()
	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TryBegin("report") == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}

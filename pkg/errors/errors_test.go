package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"direct match", ErrNotFound, true},
		{"wrapped once", fmt.Errorf("load corpus: %w", ErrNotFound), true},
		{"wrapped twice", fmt.Errorf("page: %w", fmt.Errorf("scan: %w", ErrNotFound)), true},
		{"different error", ErrValidation, false},
		{"nil error", nil, false},
		{"unrelated error", errors.New("something else"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSentinelHelpers(t *testing.T) {
	tests := []struct {
		name  string
		check func(error) bool
		match error
		other error
	}{
		{"validation", IsValidation, ErrValidation, ErrNotFound},
		{"missing api key", IsMissingAPIKey, ErrMissingAPIKey, ErrValidation},
		{"unknown report type", IsUnknownReportType, ErrUnknownReportType, ErrValidation},
		{"busy", IsBusy, ErrBusy, ErrInvalidState},
		{"invalid state", IsInvalidState, ErrInvalidState, ErrBusy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(fmt.Errorf("wrapped: %w", tt.match)) {
				t.Errorf("expected wrapped %v to match", tt.match)
			}
			if tt.check(tt.other) {
				t.Errorf("expected %v not to match", tt.other)
			}
			if tt.check(nil) {
				t.Error("expected nil not to match")
			}
		})
	}
}

type codedErr struct{ code ErrorCode }

func (e codedErr) Error() string        { return "coded" }
func (e codedErr) ErrorCode() ErrorCode { return e.code }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"deadline", context.DeadlineExceeded, ErrTimeout},
		{"cancelled", fmt.Errorf("call: %w", context.Canceled), ErrContextCancelled},
		{"classifier", fmt.Errorf("gemini: %w", codedErr{ErrRateLimit}), ErrRateLimit},
		{"quota text", errors.New("RESOURCE_EXHAUSTED: quota exceeded"), ErrRateLimit},
		{"bad key text", errors.New("API key not valid"), ErrUnauthorized},
		{"unavailable text", errors.New("dial tcp: connection refused"), ErrModelUnavailable},
		{"empty text", errors.New("empty response from model"), ErrEmptyContent},
		{"fallback", errors.New("boom"), ErrProcessingError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err, "report")
			if got == nil {
				t.Fatal("expected non-nil ActionError")
			}
			if got.Code != tt.want {
				t.Errorf("Code = %s, want %s", got.Code, tt.want)
			}
			if got.Action != "report" {
				t.Errorf("Action = %s, want report", got.Action)
			}
			if !errors.Is(got, tt.err) {
				t.Error("expected ActionError to unwrap to the cause")
			}
		})
	}
}

func TestClassifyError_Nil(t *testing.T) {
	if got := ClassifyError(nil, "chat"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestClassifyError_KeepsExisting(t *testing.T) {
	ae := &ActionError{Code: ErrParseError, Action: "report", Message: "bad json"}
	got := ClassifyError(fmt.Errorf("outer: %w", ae), "chat")
	if got != ae {
		t.Errorf("expected the existing ActionError to be returned")
	}
}

func TestUserMessage(t *testing.T) {
	msg := UserMessage(errors.New("HTTP 429 too many requests"), "chat")
	if !strings.Contains(msg, GetDescription(ErrRateLimit)) {
		t.Errorf("message %q missing description", msg)
	}
	if !strings.Contains(msg, GetSuggestedAction(ErrRateLimit)) {
		t.Errorf("message %q missing suggested action", msg)
	}
	if UserMessage(nil, "chat") != "" {
		t.Error("expected empty message for nil error")
	}
}

func TestRegistryCoversCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrTimeout, ErrRateLimit, ErrModelUnavailable, ErrContextCancelled,
		ErrUnauthorized, ErrParseError, ErrEmptyContent, ErrProcessingError,
	}
	for _, code := range codes {
		if _, ok := ErrorCodeRegistry[code]; !ok {
			t.Errorf("code %s missing from registry", code)
		}
	}
	if GetDescription("nope") != "Erro desconhecido" {
		t.Error("unexpected description for unknown code")
	}
}

package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a classified failure of a user action (report or chat).
type ErrorCode string

const (
	ErrTimeout          ErrorCode = "timeout"
	ErrRateLimit        ErrorCode = "rate_limit"
	ErrModelUnavailable ErrorCode = "model_unavailable"
	ErrContextCancelled ErrorCode = "context_cancelled"
	ErrUnauthorized     ErrorCode = "unauthorized"
	ErrParseError       ErrorCode = "parse_error"
	ErrEmptyContent     ErrorCode = "empty_content"
	ErrProcessingError  ErrorCode = "processing_error"
)

// ActionError is a classified failure of one report or chat action.
// It never escapes the presentation layer as a crash; it is rendered inline.
type ActionError struct {
	Code    ErrorCode
	Action  string
	Message string
	Cause   error
}

func (e *ActionError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Action, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ActionError) Unwrap() error {
	return e.Cause
}

// Classifier lets lower layers attach a code to their own error types.
type Classifier interface {
	ErrorCode() ErrorCode
}

// ClassifyError inspects an error and returns an *ActionError with the appropriate code.
// Unrecognised errors are classified as ErrProcessingError.
func ClassifyError(err error, action string) *ActionError {
	if err == nil {
		return nil
	}

	var existing *ActionError
	if errors.As(err, &existing) {
		return existing
	}

	ae := &ActionError{
		Action:  action,
		Message: err.Error(),
		Cause:   err,
	}

	var c Classifier
	if errors.As(err, &c) {
		ae.Code = c.ErrorCode()
		return ae
	}

	if errors.Is(err, context.DeadlineExceeded) {
		ae.Code = ErrTimeout
		ae.Message = "operation timed out"
		return ae
	}
	if errors.Is(err, context.Canceled) {
		ae.Code = ErrContextCancelled
		ae.Message = "operation cancelled"
		return ae
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "429") ||
		strings.Contains(lower, "quota") || strings.Contains(lower, "resource_exhausted"):
		ae.Code = ErrRateLimit
	case strings.Contains(lower, "api key") || strings.Contains(lower, "401") ||
		strings.Contains(lower, "403") || strings.Contains(lower, "permission_denied"):
		ae.Code = ErrUnauthorized
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "unavailable") ||
		strings.Contains(lower, "503") || strings.Contains(lower, "no such host"):
		ae.Code = ErrModelUnavailable
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		ae.Code = ErrTimeout
	case strings.Contains(lower, "empty response") || strings.Contains(lower, "no content"):
		ae.Code = ErrEmptyContent
	default:
		ae.Code = ErrProcessingError
	}
	return ae
}

// UserMessage renders err as the inline message shown after a failed action.
func UserMessage(err error, action string) string {
	ae := ClassifyError(err, action)
	if ae == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s\n%s", GetDescription(ae.Code), ae.Message, GetSuggestedAction(ae.Code))
}

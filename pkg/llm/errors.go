package llm

import (
	"errors"
	"fmt"

	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
)

var (
	// ErrRateLimited is returned on HTTP 429.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrUnavailable is returned on 5xx and 408 responses.
	ErrUnavailable = errors.New("model unavailable")
	// ErrUnauthorized is returned on 401 and 403 responses.
	ErrUnauthorized = errors.New("api key rejected")
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("empty response from model")
)

// APIError is a non-2xx answer from the model endpoint.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gemini %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini %d", e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.kind }

// ErrorCode classifies the failure for the presentation layer.
func (e *APIError) ErrorCode() eerrors.ErrorCode {
	switch e.kind {
	case ErrRateLimited:
		return eerrors.ErrRateLimit
	case ErrUnavailable:
		return eerrors.ErrModelUnavailable
	case ErrUnauthorized:
		return eerrors.ErrUnauthorized
	}
	return eerrors.ErrProcessingError
}

// emptyError marks a response with no candidate text.
type emptyError struct {
	reason string
}

func (e *emptyError) Error() string {
	if e.reason != "" {
		return fmt.Sprintf("%s (finish reason %s)", ErrEmptyResponse, e.reason)
	}
	return ErrEmptyResponse.Error()
}

func (e *emptyError) Unwrap() error { return ErrEmptyResponse }

func (e *emptyError) ErrorCode() eerrors.ErrorCode { return eerrors.ErrEmptyContent }

func kindForStatus(code int) error {
	switch {
	case code == 429:
		return ErrRateLimited
	case code == 401 || code == 403:
		return ErrUnauthorized
	case code == 408 || code >= 500:
		return ErrUnavailable
	}
	return nil
}

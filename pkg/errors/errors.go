// Package errors provides the sentinel errors shared by the entregaveis packages.
//
// Callers wrap these with fmt.Errorf("...: %w", err) and test them with the IsX
// helpers, so a message can gain context without losing its classification.
//
// Usage:
//
//	import eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
//
//	return nil, fmt.Errorf("loading corpus %s: %w", dir, eerrors.ErrNotFound)
//
//	if eerrors.IsNotFound(err) {
//	    // render the "directory not found" notice
//	}
package errors

import "errors"

// Domain errors.
var (
	// ErrNotFound indicates a directory, file or meeting does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid input, such as an unknown output format.
	ErrValidation = errors.New("validation error")

	// ErrMissingAPIKey indicates no text-generation API key is configured.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrUnknownReportType indicates a report type outside the closed set.
	ErrUnknownReportType = errors.New("unknown report type")

	// ErrBusy indicates an action was requested while another one is in flight.
	ErrBusy = errors.New("another action is in progress")

	// ErrInvalidState indicates the operation is not valid for the current state.
	ErrInvalidState = errors.New("invalid state")
)

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsMissingAPIKey reports whether any error in err's chain is ErrMissingAPIKey.
func IsMissingAPIKey(err error) bool {
	return errors.Is(err, ErrMissingAPIKey)
}

// IsUnknownReportType reports whether any error in err's chain is ErrUnknownReportType.
func IsUnknownReportType(err error) bool {
	return errors.Is(err, ErrUnknownReportType)
}

// IsBusy reports whether any error in err's chain is ErrBusy.
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}

// IsInvalidState reports whether any error in err's chain is ErrInvalidState.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

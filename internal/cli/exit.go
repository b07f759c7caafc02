package cli

import (
	"errors"

	"idpclient/pkg/oidc"
	"idpclient/pkg/platform/sentinel"
)

// Process exit codes.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitInvalidInput = 2
	ExitNotFound     = 3
	ExitDenied       = 4
	ExitUnavailable  = 5
)

// ExitCode classifies err for scripts driving idpctl.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, sentinel.ErrValidation), errors.Is(err, oidc.ErrPKCEIncomplete):
		return ExitInvalidInput
	case errors.Is(err, sentinel.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, sentinel.ErrUnauthorized), errors.Is(err, sentinel.ErrForbidden):
		return ExitDenied
	case errors.Is(err, sentinel.ErrUnavailable):
		return ExitUnavailable
	default:
		return ExitFailure
	}
}

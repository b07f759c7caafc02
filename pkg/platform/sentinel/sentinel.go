package sentinel

import "errors"

// Sentinel errors for facts reported by the remote identity provider. The
// transport returns typed request errors that match these through errors.Is,
// so callers can branch on the category without inspecting status codes:
// - ErrUnauthorized: credentials missing or rejected (401)
// - ErrForbidden: authenticated but not allowed (403)
// - ErrNotFound: client, user, or device code does not exist (404)
// - ErrConflict: resource state clash (409)
// - ErrValidation: request payload rejected (400, 422)
// - ErrUnavailable: server side failure (5xx)
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrUnavailable  = errors.New("unavailable")
)

// ForStatus returns the sentinel that classifies an HTTP status code, or nil
// for statuses without a category.
func ForStatus(status int) error {
	switch {
	case status == 401:
		return ErrUnauthorized
	case status == 403:
		return ErrForbidden
	case status == 404:
		return ErrNotFound
	case status == 409:
		return ErrConflict
	case status == 400 || status == 422:
		return ErrValidation
	case status >= 500:
		return ErrUnavailable
	default:
		return nil
	}
}

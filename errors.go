package photoengine

import (
	"errors"
	"net/http"
)

// Error taxonomy for the store and the admin surface. Handlers map these to
// HTTP status codes in the central error handler; everything else is a 500.
var (
	// ErrNotFound means the referenced id, slug, or usage does not exist in
	// the current snapshot.
	ErrNotFound = errors.New("photoengine: not found")

	// ErrValidation means the payload was malformed or missing a required
	// field.
	ErrValidation = errors.New("photoengine: invalid input")

	// ErrConflict means a detach/update target no longer matches the
	// expected owner. The index or request was stale; callers should
	// refresh and retry.
	ErrConflict = errors.New("photoengine: stale target")

	// ErrForbidden means the operation was attempted outside development
	// mode.
	ErrForbidden = errors.New("photoengine: not available outside development")
)

// httpStatus maps a store error to the four-category service taxonomy.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

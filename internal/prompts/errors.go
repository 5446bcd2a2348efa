package prompts

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every error returned by System wraps at most one of these.
var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
	ErrConcurrency     = errors.New("concurrent modification")
	ErrArchiveDisabled = errors.New("archive storage is not configured")
)

var (
	ErrEmptyName       = fmt.Errorf("%w: name must not be empty", ErrValidation)
	ErrEmptyContent    = fmt.Errorf("%w: content must not be empty", ErrValidation)
	ErrInvalidSlug     = fmt.Errorf("%w: name must contain a letter or digit", ErrValidation)
	ErrEmptyOwner      = fmt.Errorf("%w: caller identity is required", ErrValidation)
	ErrSlugTaken       = fmt.Errorf("%w: a prompt with this slug already exists", ErrConflict)
	ErrPromptNotFound  = fmt.Errorf("%w: prompt", ErrNotFound)
	ErrVersionNotFound = fmt.Errorf("%w: version", ErrNotFound)
)

// ErrVersionTaken reports that another writer claimed the computed version
// number first. The ledger retries on it; callers see ErrConcurrency.
var ErrVersionTaken = errors.New("version number taken")

// MapHTTPStatus maps prompt domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConcurrency):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrArchiveDisabled):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

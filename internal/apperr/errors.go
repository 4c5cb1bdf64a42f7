package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds shared by every service. Callers wrap one of these with %w so
// the HTTP boundary can map the kind to a status without string matching.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrUpstream       = errors.New("upstream failure")
	ErrPersistence    = errors.New("persistence failure")
	ErrConflict       = errors.New("conflict")
)

func NotFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

func Invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, reason)
}

// Upstream tags a provider failure. nil stays nil.
func Upstream(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUpstream) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}

// Persistence tags a datastore failure. Errors that already carry a kind
// (not found, conflict) are returned unchanged.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	if HasKind(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

func HasKind(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrUpstream) ||
		errors.Is(err, ErrPersistence) ||
		errors.Is(err, ErrConflict)
}

// HTTPStatus maps an error kind to a response status. Untagged errors are 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

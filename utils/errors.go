package utils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error taxonomy for the engine. Controllers map these onto HTTP statuses;
// callers never retry client errors automatically.
var (
	// ErrInvalidInput covers missing identity fields and malformed range
	// parameters.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound covers absent leads, listings and reminders.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable covers event-source and store timeouts. The
	// rollup job logs and skips per listing; interactive reads surface it
	// with the cause attached.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// PartialWriteError reports a group-propagation status update that mutated
// fewer rows than it targeted. Updated carries the count that did change so
// callers can detect the partial update.
type PartialWriteError struct {
	Updated int
	Cause   error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write: %d rows updated before failure: %v", e.Updated, e.Cause)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps a taxonomy error to the status code controllers respond
// with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrUpstreamUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

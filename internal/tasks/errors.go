package tasks

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ValidationError is a missing or empty required field. Never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError means the operation targeted an id with no row behind it.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("task %d not found", e.ID) }

// StoreError wraps a failure of the durable store. Its detail is logged, not
// shown to HTTP callers.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }
func (e *StoreError) Cause() error  { return e.Err }

// UpstreamError means the model was unreachable or replied with garbage.
// Only the suggestion flow returns it; classification falls back instead.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return "upstream model: " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }
func (e *UpstreamError) Cause() error  { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// HTTPStatus maps the error taxonomy onto response codes.
func HTTPStatus(err error) int {
	var (
		validation *ValidationError
		notFound   *NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

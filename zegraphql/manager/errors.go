package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/zekoder/zegraphql/zegraphql/query"
	"github.com/zekoder/zegraphql/zegraphql/storage"
)

var (
	// ErrNotFound is returned when no record matches the requested id or filters
	ErrNotFound = errors.New("not found")

	// ErrInvalidQuery is returned for filter, pagination or payload input the caller must fix
	ErrInvalidQuery = query.ErrInvalidQuery
)

// IntegrityError is a constraint violation reported by the storage engine
type IntegrityError struct {
	Entity string
	Detail string // Engine diagnostic, safe to show to clients
	Err    error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity conflict on %s: %s", e.Entity, e.Detail)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// ValidationError is returned by hooks that reject a payload
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InternalError hides an unexpected failure from callers.
// The cause is logged where it happens and reachable through errors.Unwrap,
// but Error never prints it.
type InternalError struct {
	Op     string
	Entity string
	Err    error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error during %s on %s", e.Op, e.Entity)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// IsClientError reports whether err is something the caller can fix by changing the request
func IsClientError(err error) bool {
	var integrity *IntegrityError
	var validation *ValidationError
	return errors.Is(err, ErrInvalidQuery) || errors.As(err, &integrity) || errors.As(err, &validation)
}

// classify passes typed errors through and turns everything else into an
// IntegrityError or a logged InternalError
func (m *Manager) classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var integrity *IntegrityError
	var validation *ValidationError
	var internal *InternalError
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidQuery),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &integrity),
		errors.As(err, &validation),
		errors.As(err, &internal):
		return err
	}

	if storage.IsConstraintViolation(err) {
		return &IntegrityError{
			Entity: m.entity.Name,
			Detail: storage.ConstraintDetail(err),
			Err:    err,
		}
	}

	m.logger.Error().Err(err).Str("op", op).Msg("operation failed")
	return &InternalError{Op: op, Entity: m.entity.Name, Err: err}
}

// status labels an operation outcome for metrics
func status(err error) string {
	var integrity *IntegrityError
	var validation *ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &integrity):
		return "conflict"
	case errors.Is(err, ErrInvalidQuery), errors.As(err, &validation):
		return "invalid"
	default:
		return "error"
	}
}

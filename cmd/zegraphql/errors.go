package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zekoder/zegraphql/business"
	"github.com/zekoder/zegraphql/zegraphql/manager"
)

// CLIError is a user-facing failure with context and suggestions
type CLIError struct {
	Operation   string   // e.g. "list", "get"
	Cause       string   // e.g. "record not found"
	Details     string   // Technical details
	Suggestions []string // Things the user can try
	Underlying  error
}

func (e *CLIError) Error() string {
	var msg strings.Builder

	if e.Operation != "" {
		msg.WriteString(fmt.Sprintf("Failed to %s", e.Operation))
	} else {
		msg.WriteString("Operation failed")
	}
	if e.Cause != "" {
		msg.WriteString(fmt.Sprintf(": %s", e.Cause))
	}
	if e.Details != "" {
		msg.WriteString(fmt.Sprintf(" (%s)", e.Details))
	}
	if len(e.Suggestions) > 0 {
		msg.WriteString("\n\nSuggestions:")
		for i, s := range e.Suggestions {
			msg.WriteString(fmt.Sprintf("\n  %d. %s", i+1, s))
		}
	}
	return msg.String()
}

func (e *CLIError) Unwrap() error {
	return e.Underlying
}

// NewValidationError reports a flag or argument the user must fix
func NewValidationError(operation, field, value string, suggestions ...string) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       fmt.Sprintf("invalid %s: %q", field, value),
		Suggestions: suggestions,
	}
}

// NewConfigError reports a configuration problem
func NewConfigError(operation string, underlying error, suggestions ...string) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       "configuration error",
		Details:     underlying.Error(),
		Suggestions: suggestions,
		Underlying:  underlying,
	}
}

// NewStoreError wraps a service error with a friendlier cause
func NewStoreError(operation, entity string, underlying error) *CLIError {
	e := &CLIError{
		Operation:  operation,
		Cause:      "store operation failed",
		Details:    underlying.Error(),
		Underlying: underlying,
	}

	var validation *manager.ValidationError
	var integrity *manager.IntegrityError
	switch {
	case errors.Is(underlying, business.ErrUnknownEntity):
		e.Cause = fmt.Sprintf("unknown entity %q", entity)
		e.Details = ""
		e.Suggestions = []string{"Available entities: " + strings.Join(entityNames(), ", ")}
	case errors.Is(underlying, manager.ErrNotFound):
		e.Cause = "record not found"
		e.Suggestions = []string{fmt.Sprintf("Run 'zegraphql list %s' to see existing records", entity)}
	case errors.Is(underlying, manager.ErrInvalidQuery):
		e.Cause = "invalid query"
		e.Suggestions = []string{
			"Filters take the form field.path__op=value, e.g. name__prefix=Oil",
			"Pages start at 1 and page sizes must not be negative",
		}
	case errors.As(underlying, &validation):
		e.Cause = "invalid data provided"
	case errors.As(underlying, &integrity):
		e.Cause = "the database rejected the change"
	case strings.Contains(strings.ToLower(underlying.Error()), "database is locked"):
		e.Cause = "database is currently locked by another process"
	}
	return e
}

func entityNames() []string {
	return []string{business.Documents, business.Industries, business.SummaryTasks}
}

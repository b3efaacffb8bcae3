// Package errs holds the error kinds shared by the reservation core and the
// HTTP layer. Callers classify errors with errors.Is / errors.As.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidState        = errors.New("invalid state")
	ErrConflict            = errors.New("conflict")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

// StateError reports a transition attempted from a status that does not
// satisfy its precondition.
type StateError struct {
	Operation string
	Current   string
	Expected  []string
}

func (e *StateError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("cannot %s reservation in status %s", e.Operation, e.Current)
	}
	return fmt.Sprintf("cannot %s reservation in status %s, expected %s",
		e.Operation, e.Current, strings.Join(e.Expected, " or "))
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// NotFound wraps ErrNotFound with the kind and id of the missing entity.
func NotFound(kind string, id fmt.Stringer) error {
	return fmt.Errorf("%s %s %w", kind, id.String(), ErrNotFound)
}

// InvalidInput wraps ErrInvalidInput with a message.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Conflict wraps ErrConflict with a message.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// ValidationError carries per-field messages from request validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

package quote

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrIncompleteIntake   = errors.New("incomplete intake")
	ErrValidation         = errors.New("validation error")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrImmutableField     = errors.New("immutable field")
	ErrNotFound           = errors.New("quote not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// FieldErrors maps a field name to its messages.
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e FieldErrors) Fields() []string {
	out := make([]string, 0, len(e))
	for f := range e {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

type ValidationError struct {
	Errors FieldErrors
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Errors.Fields(), ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// validationResult returns nil when errs is empty.
func validationResult(errs FieldErrors) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}

type IncompleteIntakeError struct {
	Missing []string
}

func (e *IncompleteIntakeError) Error() string {
	if e == nil {
		return ""
	}
	return ErrIncompleteIntake.Error() + ": missing " + strings.Join(e.Missing, ", ")
}

func (e *IncompleteIntakeError) Is(target error) bool {
	return target == ErrIncompleteIntake
}

type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

type ImmutableFieldError struct {
	Field string
}

func (e *ImmutableFieldError) Error() string {
	if e == nil {
		return ""
	}
	return ErrImmutableField.Error() + ": " + e.Field
}

func (e *ImmutableFieldError) Is(target error) bool {
	return target == ErrImmutableField
}

// Unavailable wraps a persistence failure as ErrStorageUnavailable.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}

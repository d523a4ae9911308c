package service

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// ValidationError carries field name -> violation messages, returned before
// any mutation happens.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string { return "validation failed" }

func newValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

func (e *ValidationError) add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) merge(err error) {
	if err == nil {
		return
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		for field, ferr := range fields {
			e.add(field, ferr.Error())
		}
		return
	}
	e.add("_", err.Error())
}

func (e *ValidationError) empty() bool { return len(e.Fields) == 0 }

// PersistenceError marks a write the store rejected after validation passed,
// e.g. a uniqueness race between concurrent instances.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

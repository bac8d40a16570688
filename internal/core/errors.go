package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingField = errors.New("field required")
	ErrInvalidType  = errors.New("invalid type")
	ErrInvalidBody  = errors.New("invalid request body")
	ErrOutOfRange   = errors.New("value out of range")
)

// FieldError describes one problem with an incoming payload.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
	err  error
}

func (e FieldError) Error() string {
	return strings.Join(e.Loc, ".") + ": " + e.Msg
}

func (e FieldError) Unwrap() error { return e.err }

// NewFieldError builds a FieldError for a body field.
func NewFieldError(field string, kind error, msg string) FieldError {
	typ := "value_error"
	switch {
	case errors.Is(kind, ErrMissingField):
		typ = "missing"
	case errors.Is(kind, ErrInvalidType):
		typ = "type_error"
	case errors.Is(kind, ErrInvalidBody):
		typ = "json_invalid"
	}
	loc := []string{"body"}
	if field != "" {
		loc = append(loc, field)
	}
	return FieldError{Loc: loc, Msg: msg, Type: typ, err: kind}
}

// ValidationError collects every field problem found in a payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// Add appends a field problem.
func (e *ValidationError) Add(f FieldError) {
	e.Fields = append(e.Fields, f)
}

// OrNil returns nil when no problems were recorded.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Is lets errors.Is match on the sentinel of any contained field error.
func (e *ValidationError) Is(target error) bool {
	for _, f := range e.Fields {
		if errors.Is(f, target) {
			return true
		}
	}
	return false
}

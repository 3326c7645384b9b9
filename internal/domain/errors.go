package domain

import (
	"errors"
	"fmt"
)

// Specification errors form a closed set. All of them are surfaced at parse
// time, before any record is touched; a record that merely lacks a referenced
// field is never an error, it is an evaluation outcome.
var (
	ErrUnknownEntity          = errors.New("unknown entity")
	ErrUnknownOperator        = errors.New("unknown operator")
	ErrMalformedOperatorValue = errors.New("malformed operator value")
	ErrInvalidPeriodToken     = errors.New("invalid period token")
	ErrEmptyLogicalGroup      = errors.New("empty logical group")
	ErrNoRelationshipDefined  = errors.New("no relationship defined")
)

// SpecError wraps one of the specification sentinels with the path of the
// offending key inside the raw filter structure, so callers can render a
// diagnostic pointing at the exact spot. Unwrap exposes the sentinel for
// errors.Is checks.
type SpecError struct {
	Path   string
	Err    error
	Detail string
}

func (e *SpecError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s at %q: %s", e.Err, e.Path, e.Detail)
	}
	return fmt.Sprintf("%s at %q", e.Err, e.Path)
}

func (e *SpecError) Unwrap() error {
	return e.Err
}

// NewSpecError builds a SpecError for the given sentinel and key path.
func NewSpecError(sentinel error, path, detail string) *SpecError {
	return &SpecError{Path: path, Err: sentinel, Detail: detail}
}

package core

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies a domain failure so adapters can map it to a transport status.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindUnavailable
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is a classified domain error. Message is safe to show to callers.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string // per-field validation messages, keyed by JSON name
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func NotFoundf(format string, args ...any) error {
	return newError(KindNotFound, nil, format, args...)
}

func Validationf(format string, args ...any) error {
	return newError(KindValidation, nil, format, args...)
}

func Conflictf(format string, args ...any) error {
	return newError(KindConflict, nil, format, args...)
}

func Unauthorizedf(format string, args ...any) error {
	return newError(KindUnauthorized, nil, format, args...)
}

// Unavailable wraps a failure of an external collaborator (renderer, SMTP).
func Unavailable(err error, format string, args ...any) error {
	return newError(KindUnavailable, err, format, args...)
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// uniqueViolation reports whether err is a Postgres unique_violation (23505),
// optionally restricted to a named constraint.
func uniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// notFoundOr maps pgx.ErrNoRows to a NotFound error and wraps anything else.
func notFoundOr(err error, what string, id any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFoundf("%s %v not found", what, id)
	}
	return fmt.Errorf("failed to load %s %v: %w", what, id, err)
}

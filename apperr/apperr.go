// Package apperr defines the error kinds shared by the library and the HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind classifies a failure so the HTTP layer can pick a status code.
type Kind int

const (
	Internal Kind = iota
	InvalidInput
	Unauthorized
	Forbidden
	NotFound
	Conflict
	CapacityExceeded
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not found"
	case Conflict:
		return "conflict"
	case CapacityExceeded:
		return "capacity exceeded"
	default:
		return "internal"
	}
}

// Status maps the kind onto an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case InvalidInput:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict, CapacityExceeded:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, &Error{Kind: k}) match on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Invalid(msg string) *Error { return New(InvalidInput, msg) }
func NoIdentity(msg string) *Error { return New(Unauthorized, msg) }
func Denied(msg string) *Error { return New(Forbidden, msg) }
func Missing(msg string) *Error { return New(NotFound, msg) }
func Conflicting(msg string) *Error { return New(Conflict, msg) }
func AtCapacity(msg string) *Error { return New(CapacityExceeded, msg) }

// KindOf reports the kind of err, or Internal when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the client-facing message of err. Internal errors never
// leak their details.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "internal server error"
}

// FromDB turns driver and gorm failures into domain errors. notFound is the
// message used when the record does not exist.
func FromDB(err error, notFound string) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Missing(notFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Wrap(Conflict, "duplicate entry", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Wrap(Conflict, "duplicate entry", err)
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return Wrap(Conflict, "duplicate entry", err)
	}

	return Wrap(Internal, "database error", err)
}

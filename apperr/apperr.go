// Package apperr defines the closed set of errors the users API can produce
// and how each one is reported over HTTP.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies one member of the error taxonomy.
type Kind int

const (
	// KindNotFound: an insert returned no row.
	KindNotFound Kind = iota + 1
	// KindPool: no client could be leased from the connection pool.
	KindPool
	// KindDatabase: the database rejected a statement.
	KindDatabase
	// KindMapping: a returned row could not be converted into a model.
	KindMapping
	// KindStatement: a statement could not be prepared.
	KindStatement
)

// UniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const UniqueViolation = "23505"

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPool:
		return "pool error"
	case KindDatabase:
		return "database error"
	case KindMapping:
		return "mapping error"
	case KindStatement:
		return "statement preparation error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a taxonomy member wrapping the lower-level cause, if any.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code the error is reported with.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindDatabase:
		if IsUniqueViolation(e.Err) {
			return http.StatusConflict
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Body returns the plain-text response body. Only pool failures expose
// their cause; every other kind is reported with an empty body.
func (e *Error) Body() string {
	if e.Kind == KindPool && e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

func NotFound() *Error { return &Error{Kind: KindNotFound} }

func Pool(err error) *Error { return &Error{Kind: KindPool, Err: err} }

func Database(err error) *Error { return &Error{Kind: KindDatabase, Err: err} }

func Mapping(err error) *Error { return &Error{Kind: KindMapping, Err: err} }

func Statement(err error) *Error { return &Error{Kind: KindStatement, Err: err} }

// Is reports whether err is a taxonomy error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// fielder is implemented by driver errors carrying PostgreSQL
// ErrorResponse fields, such as pgdriver.Error.
type fielder interface {
	Field(k byte) string
}

// SQLState returns the SQLSTATE code carried by err, or "" if there is none.
func SQLState(err error) string {
	var pgErr fielder
	if !errors.As(err, &pgErr) {
		return ""
	}
	return pgErr.Field('C')
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return SQLState(err) == UniqueViolation
}

// IsDriverError reports whether err originated in the database server.
func IsDriverError(err error) bool {
	return SQLState(err) != ""
}

// Package apperr defines the error taxonomy shared by handlers, stores and
// middleware, plus the single translation point that turns any fault into a
// JSON response. Handlers never write error responses themselves; they
// return an error and the central handler shapes it.
package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-sql-driver/mysql"
)

// Error is an operational error: one that is expected, carries an HTTP
// status and whose message is safe to show to the caller. Anything that is
// not an *Error is treated as internal and hidden outside dev mode.
type Error struct {
	Code    int    // HTTP status code
	Message string // caller-facing message
	Err     error  // wrapped cause, exposed in dev mode only
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the envelope status field: "fail" for 4xx codes and
// "error" for everything else.
func (e *Error) Status() string {
	if e.Code >= 400 && e.Code < 500 {
		return "fail"
	}
	return "error"
}

// New builds an operational error with an explicit status code.
func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap is New plus a preserved cause.
func Wrap(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Validation flags a schema or shape violation in the request.
func Validation(message string) *Error { return New(http.StatusBadRequest, message) }

// NotFound flags a missing resource.
func NotFound(message string) *Error { return New(http.StatusNotFound, message) }

// Unauthorized flags a failed authentication (bad credentials or token).
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }

// Forbidden flags a role mismatch on an otherwise authenticated request.
func Forbidden(message string) *Error { return New(http.StatusForbidden, message) }

// Duplicate flags a unique-constraint violation.
func Duplicate(message string) *Error { return New(http.StatusConflict, message) }

// Internal wraps an unclassified fault. The message shown to the caller is
// generic; the cause is kept for logging and dev mode.
func Internal(err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Message: "something went very wrong", Err: err}
}

// Common auth failures reused across the credential service and middleware.
var (
	ErrInvalidCredentials    = Unauthorized("incorrect email or password")
	ErrInvalidToken          = Unauthorized("invalid token, please log in again")
	ErrExpiredToken          = Unauthorized("your token has expired, please log in again")
	ErrTokenInvalidOrExpired = Validation("token is invalid or has expired")
)

// FromDB translates storage faults into the taxonomy: sql.ErrNoRows becomes
// NotFound and a MySQL duplicate-key violation (error 1062) becomes
// Duplicate. Anything else passes through to be treated as internal.
func FromDB(err error, notFoundMsg, duplicateMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return NotFound(notFoundMsg)
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return Duplicate(duplicateMsg)
	}
	return err
}

// IsNotFound reports whether err is an operational 404.
func IsNotFound(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == http.StatusNotFound
}

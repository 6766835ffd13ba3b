// Package domainerrors defines the error taxonomy shared by services and
// transports. Services return *Error values; transports translate codes into
// status codes without inspecting messages.
package domainerrors

import "errors"

// Code classifies a domain error.
type Code string

const (
	// CodeValidation covers user-correctable input (bad phone/email shape).
	CodeValidation Code = "validation"
	// CodeBadRequest covers malformed requests (undecodable body).
	CodeBadRequest Code = "bad_request"
	// CodeInvariantViolation is raised by model constructors; services convert it
	// to CodeValidation before it reaches a transport.
	CodeInvariantViolation Code = "invariant_violation"
	CodeNotFound           Code = "not_found"
	CodeUnauthorized       Code = "unauthorized"
	CodeRateLimited        Code = "rate_limited"
	// CodePersistence means a store was unavailable or a read/write failed.
	CodePersistence Code = "persistence"
	// CodeNotification means the lead notifier failed. The lead is already stored.
	CodeNotification Code = "notification"
	CodeInternal     Code = "internal"
)

// Error carries a code, a client-safe message, the offending field (if any)
// and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Option decorates an Error at construction.
type Option func(*Error)

// WithField records which request field caused the error.
func WithField(field string) Option {
	return func(e *Error) {
		e.Field = field
	}
}

// New builds an Error with the given code and message.
func New(code Code, msg string, opts ...Option) *Error {
	e := &Error{Code: code, Message: msg}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Wrap attaches a code and message to a cause.
func Wrap(err error, code Code, msg string, opts ...Option) *Error {
	e := New(code, msg, opts...)
	e.Err = err
	return e
}

// As returns the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// Is is an alias of HasCode kept for handler call sites.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// FieldOf returns the field recorded on err, or "".
func FieldOf(err error) string {
	if de, ok := As(err); ok {
		return de.Field
	}
	return ""
}

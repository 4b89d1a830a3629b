package result

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync/atomic"
)

// Code is the closed set of failure categories understood by the HTTP edge.
type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeRateLimited  Code = "RATE_LIMITED"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeNetwork      Code = "NETWORK_ERROR"
	CodeTimeout      Code = "TIMEOUT"
)

var statusByCode = map[Code]int{
	CodeValidation:   http.StatusBadRequest,
	CodeUnauthorized: http.StatusUnauthorized,
	CodeForbidden:    http.StatusForbidden,
	CodeNotFound:     http.StatusNotFound,
	CodeConflict:     http.StatusConflict,
	CodeRateLimited:  http.StatusTooManyRequests,
	CodeInternal:     http.StatusInternalServerError,
	CodeNetwork:      http.StatusBadGateway,
	CodeTimeout:      http.StatusGatewayTimeout,
}

// StatusOf maps a code to its HTTP status. Unknown codes map to 500.
func StatusOf(code Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

var production atomic.Bool

// SetProduction toggles production behaviour: no stack traces are captured and
// the edge stops exposing error details.
func SetProduction(enabled bool) {
	production.Store(enabled)
}

// Production reports whether production behaviour is enabled.
func Production() bool {
	return production.Load()
}

// Error is an expected failure carrying a code, a user-facing message and
// optional structured details.
type Error struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New builds an Error. details may be nil.
func New(code Code, message string, details map[string]any) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

func Validation(message string, details map[string]any) *Error {
	return New(CodeValidation, message, details)
}

func NotFound(message string) *Error {
	return New(CodeNotFound, message, nil)
}

func Conflict(message string, details map[string]any) *Error {
	return New(CodeConflict, message, details)
}

func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, message, nil)
}

func Forbidden(message string) *Error {
	return New(CodeForbidden, message, nil)
}

func Internal(message string) *Error {
	return New(CodeInternal, message, nil)
}

// Wrap converts an unexpected error into an *Error tagged with code
// (INTERNAL_ERROR when none is given). An *Error passes through unchanged.
// Outside production the current stack is attached as details.stack.
func Wrap(err error, code ...Code) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	c := CodeInternal
	if len(code) > 0 {
		c = code[0]
	}
	var details map[string]any
	if !Production() {
		details = map[string]any{"stack": string(debug.Stack())}
	}
	return New(c, err.Error(), details)
}

// CodeOf extracts the code of err, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Result is either a success carrying data or a failure carrying an *Error.
type Result[T any] struct {
	data T
	err  *Error
}

func Ok[T any](data T) Result[T] {
	return Result[T]{data: data}
}

func Fail[T any](err *Error) Result[T] {
	if err == nil {
		panic("result: Fail called with nil error")
	}
	return Result[T]{err: err}
}

// From bridges a Go (value, error) pair into a Result.
func From[T any](data T, err error) Result[T] {
	if err != nil {
		return Fail[T](Wrap(err))
	}
	return Ok(data)
}

// Try runs fn and converts a returned error with Wrap.
func Try[T any](fn func() (T, error), code ...Code) Result[T] {
	data, err := fn()
	if err != nil {
		return Fail[T](Wrap(err, code...))
	}
	return Ok(data)
}

func (r Result[T]) IsOk() bool   { return r.err == nil }
func (r Result[T]) IsFail() bool { return r.err != nil }

// Data returns the success payload, the zero value on failure.
func (r Result[T]) Data() T { return r.data }

// Err returns the failure, nil on success.
func (r Result[T]) Err() *Error { return r.err }

// Unwrap returns the payload and panics on failure. Call it only where success
// has already been established.
func (r Result[T]) Unwrap() T {
	if r.err != nil {
		panic(fmt.Sprintf("unwrap failed: %s - %s", r.err.Code, r.err.Message))
	}
	return r.data
}

func (r Result[T]) UnwrapOr(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.data
}

// Map transforms a success payload and passes failures through unchanged.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return Ok(fn(r.data))
}

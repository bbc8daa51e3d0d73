package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeUnauthorized    Code = "unauthorized"
	CodeForbidden       Code = "forbidden"
	CodeNotFound        Code = "not_found"
	CodeInvalidState    Code = "invalid_state"
	CodeInvalidContent  Code = "invalid_content"
	CodeInvalidArgument Code = "invalid_request"
	CodeConflict        Code = "conflict"
	CodeInternal        Code = "internal_error"
)

// Error is the only error type that crosses the service boundary with a
// user-visible message. Err carries the short message; anything wrapped
// further down stays in logs.
type Error struct {
	Status int
	Code   Code
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return string(e.Code)
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code Code, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func newf(status int, code Code, format string, args ...any) *Error {
	return New(status, code, fmt.Errorf(format, args...))
}

func Unauthorized(format string, args ...any) *Error {
	return newf(http.StatusUnauthorized, CodeUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newf(http.StatusForbidden, CodeForbidden, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newf(http.StatusNotFound, CodeNotFound, format, args...)
}

// InvalidState reports an illegal lifecycle transition. It is a 400 on the
// REST surface (assigning a non-pending conversation).
func InvalidState(format string, args ...any) *Error {
	return newf(http.StatusBadRequest, CodeInvalidState, format, args...)
}

func InvalidContent(format string, args ...any) *Error {
	return newf(http.StatusBadRequest, CodeInvalidContent, format, args...)
}

func InvalidArgument(format string, args ...any) *Error {
	return newf(http.StatusBadRequest, CodeInvalidArgument, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newf(http.StatusConflict, CodeConflict, format, args...)
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, err)
}

// CodeOf returns the code of the first *Error in err's chain, or "" when
// err is not an api error.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae.Code
	}
	return ""
}

func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

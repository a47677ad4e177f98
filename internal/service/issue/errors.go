package issue

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Repository implementations.
var (
	ErrNotFound      = errors.New("issue not found")
	ErrAlreadyExists = errors.New("issue already exists")
)

// Code identifies a failure class on the wire.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeInvalidID     Code = "INVALID_ID"
	CodeMissingID     Code = "MISSING_ID"
	CodeInvalidBody   Code = "INVALID_BODY"
	CodeInvalidJSON   Code = "INVALID_JSON"
	CodeInvalidStatus Code = "INVALID_STATUS"
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeCreate        Code = "CREATE_ERROR"
	CodeGet           Code = "GET_ERROR"
	CodeList          Code = "LIST_ERROR"
	CodeUpdate        Code = "UPDATE_ERROR"
	CodeDelete        Code = "DELETE_ERROR"
	CodeInternal      Code = "INTERNAL_ERROR"
)

// Error is the failure half of every service result. Message is safe to
// show to callers; Err keeps the underlying cause for logs and errors.Is.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error with no underlying cause.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// CodeOf extracts the code from err. Errors that did not come from this
// package report CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

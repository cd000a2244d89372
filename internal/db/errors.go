package db

import (
	"errors"
	"fmt"
)

// ErrorKind classifies store and service failures so that transports can map
// them to their own status codes without inspecting driver errors.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindUnavailable      ErrorKind = "unavailable"
	KindInvalidArgument  ErrorKind = "invalid_argument"
	KindAlreadyExists    ErrorKind = "already_exists"
)

// StoreError carries an ErrorKind alongside a human-readable message and an
// optional wrapped cause.
type StoreError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NotFound returns a StoreError of kind not_found.
func NotFound(msg string) *StoreError {
	return &StoreError{Kind: KindNotFound, Msg: msg}
}

// PermissionDenied returns a StoreError of kind permission_denied.
func PermissionDenied(msg string) *StoreError {
	return &StoreError{Kind: KindPermissionDenied, Msg: msg}
}

// Unavailable returns a StoreError of kind unavailable wrapping the cause.
func Unavailable(msg string, cause error) *StoreError {
	return &StoreError{Kind: KindUnavailable, Msg: msg, Err: cause}
}

// InvalidArgument returns a StoreError of kind invalid_argument.
func InvalidArgument(msg string) *StoreError {
	return &StoreError{Kind: KindInvalidArgument, Msg: msg}
}

// AlreadyExists returns a StoreError of kind already_exists.
func AlreadyExists(msg string) *StoreError {
	return &StoreError{Kind: KindAlreadyExists, Msg: msg}
}

// KindOf extracts the ErrorKind from err. Errors that are not StoreErrors
// are treated as unavailable, the catch-all for backend trouble.
func KindOf(err error) ErrorKind {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnavailable
}

// IsKind reports whether err is a StoreError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == kind
}

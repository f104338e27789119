package model

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure independently of the transport that reports it.
type ErrorCode string

const (
	ErrCodeValidation       ErrorCode = "VALIDATION"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeConflict         ErrorCode = "CONFLICT"
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	ErrCodeInvalidState     ErrorCode = "INVALID_STATE"
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal         ErrorCode = "INTERNAL"
)

// Error is returned by services for every expected failure.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches two domain errors by code and message so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || t == nil || e == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

var (
	ErrTaskNotFound        = NewError(ErrCodeNotFound, "task not found")
	ErrApplicationNotFound = NewError(ErrCodeNotFound, "application not found")
	ErrSlotNotFound        = NewError(ErrCodeNotFound, "slot not found")
	ErrAppointmentNotFound = NewError(ErrCodeNotFound, "appointment not found")
	ErrUserNotFound        = NewError(ErrCodeNotFound, "user not found")
	ErrTutorNotFound       = NewError(ErrCodeNotFound, "tutor not found")
	ErrNotProfileOwner     = NewError(ErrCodePermissionDenied, "only the profile owner can edit it")
	ErrNotTaskOwner        = NewError(ErrCodePermissionDenied, "only the task owner can do this")
	ErrNotSlotOwner        = NewError(ErrCodePermissionDenied, "slot belongs to another tutor")
	ErrDuplicateBid        = NewError(ErrCodeConflict, "application already submitted for this task")
	ErrAlreadyDecided      = NewError(ErrCodeConflict, "application already decided")
	ErrSlotTaken           = NewError(ErrCodeConflict, "slot already booked")
	ErrStatusRace          = NewError(ErrCodeConflict, "status was changed by a concurrent request")
	ErrUnauthorized        = NewError(ErrCodeUnauthorized, "unauthorized")
)

// CodeOf returns the classification of err, INTERNAL for anything unclassified.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ErrCodeInternal
}

// IsCode helps checking error codes.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

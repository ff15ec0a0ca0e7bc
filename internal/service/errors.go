package service

import (
	"errors"
	"fmt"
)

// Kind classifies service failures; the HTTP layer maps each kind to a
// status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindLimitExceeded
	KindInvariant
	KindDuplicate
	KindUpstream
	KindUnauthorized
	KindForbidden
	KindPaymentFailed
)

// Error is the error type returned by every service. Msg is safe to show
// to clients; Err, when set, is the underlying cause and is only logged.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
	// PaymentID is set on KindPaymentFailed so clients can quote it.
	PaymentID string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func validationErr(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }
func notFoundErr(msg string) error   { return &Error{Kind: KindNotFound, Msg: msg} }
func duplicateErr(msg string) error  { return &Error{Kind: KindDuplicate, Msg: msg} }
func forbiddenErr(msg string) error  { return &Error{Kind: KindForbidden, Msg: msg} }
func unauthorizedErr(msg string) error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

func internalErr(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

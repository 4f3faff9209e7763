package proxyobj

import (
	"errors"
	"fmt"
)

// Sentinel errors for the taxonomy in spec.md §7. Use errors.Is against
// these; the wrapping types below carry the extra context (field name,
// got/expected values) a log line needs.
var (
	ErrReceiverNoServerID = errors.New("proxyobj: receiver has no server-side id")
	ErrReceiverNoClient   = errors.New("proxyobj: receiver has no owning client")
	ErrArgNoServerID      = errors.New("proxyobj: argument object has no server-side id")
	ErrArgNoClientID      = errors.New("proxyobj: argument object has no client-side id")
	ErrGenerateServerID   = errors.New("proxyobj: failed to allocate server-side id")
	ErrGenerateClientID   = errors.New("proxyobj: failed to allocate client-side id")
	ErrSetClientID        = errors.New("proxyobj: failed to register client-side id")
	ErrSetServerID        = errors.New("proxyobj: failed to register server-side id")
	ErrWrongObjectType    = errors.New("proxyobj: argument object has the wrong interface")
	ErrUnknownMessageID   = errors.New("proxyobj: unknown request or event opcode")
	ErrNoClientObject     = errors.New("proxyobj: no object for client-provided id")
	ErrHandlerBorrowed    = errors.New("proxyobj: reentrant dispatch into the same object's handler")
)

// ObjectError wraps one of the sentinels above with the field context a
// log line or an `errors.Is` caller needs. try_send_* style functions
// return this; send_* style functions log it through their object's
// Dispatcher.Warnf and discard it.
type ObjectError struct {
	Kind  error
	Field string
	Got   any
	Want  any
}

func (e *ObjectError) Error() string {
	switch {
	case e.Field != "" && e.Got != nil && e.Want != nil:
		return fmt.Sprintf("%v: %s (got %v, want %v)", e.Kind, e.Field, e.Got, e.Want)
	case e.Field != "":
		return fmt.Sprintf("%v: %s", e.Kind, e.Field)
	default:
		return e.Kind.Error()
	}
}

func (e *ObjectError) Unwrap() error {
	return e.Kind
}

// NewObjectError builds a bare ObjectError around one of the sentinels.
func NewObjectError(kind error) *ObjectError {
	return &ObjectError{Kind: kind}
}

// NewFieldError builds an ObjectError naming the offending argument
// field (spec.md's ArgNoServerID(field) / MissingArgument(field)
// shape).
func NewFieldError(kind error, field string) *ObjectError {
	return &ObjectError{Kind: kind, Field: field}
}

// NewTypeError builds the WrongObjectType(field, got, expected) error.
func NewTypeError(field string, got, want Interface) *ObjectError {
	return &ObjectError{Kind: ErrWrongObjectType, Field: field, Got: got.Name(), Want: want.Name()}
}

// Package service implements the account and supply operations on top of
// the stores and credential primitives.
package service

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure so the HTTP boundary can pick a
// status code without inspecting messages.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindUnauthenticated
	KindNotFound
	KindDuplicate
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	case KindDuplicate:
		return "duplicate"
	default:
		return "internal"
	}
}

// Error is the failure result of every service operation. Message is safe to
// show to the client; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Outcome sentinels. They are wrapped into *Error so callers can match with
// errors.Is while still reading Kind and Message.
var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrUnregistered   = errors.New("email not registered")
	ErrWrongPassword  = errors.New("password mismatch")
	ErrSupplyNotFound = errors.New("supply not found or not owned by caller")
)

// Client-facing messages.
const (
	MsgMissingRegisterFields = "Name, email, and password are required!"
	MsgDuplicateEmail        = "Email already in use."
	MsgCheckEmailFailed      = "Database error checking email."
	MsgHashFailed            = "Error hashing password."
	MsgPasswordTooLong       = "Password must be at most 72 bytes!"
	MsgInsertFailed          = "Error inserting data to the server."
	MsgMissingLoginFields    = "Email and password are required!"
	MsgLookupFailed          = "Database not initialized!"
	MsgUnregistered          = "Unregistered Email!"
	MsgWrongPassword         = "Wrong Password!"
	MsgInvalidCredentials    = "Invalid email or password!"
	MsgCompareFailed         = "Error comparing passwords."
	MsgTokenFailed           = "Failed to create session."
	MsgMissingName           = "Username is required!"
	MsgUpdateNameFailed      = "Failed to update username"
	MsgListSuppliesFailed    = "Failed to fetch supplies"
	MsgMissingSupplyName     = "Supply name is required!"
	MsgCreateSupplyFailed    = "Failed to create supply"
	MsgUpdateSupplyFailed    = "Failed to update supply"
	MsgDeleteSupplyFailed    = "Failed to delete supply"
	MsgSupplyNotFound        = "Supply not found!"
)

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of err, or KindInternal for errors that did not
// come from this package.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

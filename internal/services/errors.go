package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidState    = errors.New("action not allowed in current state")
	ErrCodeAlreadyUsed = errors.New("code already redeemed")
)

type ErrorKind string

const (
	KindInput         ErrorKind = "input_error"
	KindAuthorization ErrorKind = "authorization_error"
	KindPersistence   ErrorKind = "persistence_error"
)

type ErrorCode string

const (
	CodeEmptyInput       ErrorCode = "EMPTY_INPUT"
	CodeInvalidCode      ErrorCode = "INVALID_CODE"
	CodeNotActive        ErrorCode = "CODE_NOT_ACTIVE"
	CodeExpired          ErrorCode = "CODE_EXPIRED"
	CodePersistenceError ErrorCode = "PERSISTENCE_ERROR"
)

// GateError is a denied redemption. Message is safe to show to the player.
type GateError struct {
	Kind    ErrorKind
	Code    ErrorCode
	Title   string
	Message string
	Err     error
}

func (e *GateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *GateError) Unwrap() error {
	return e.Err
}

// Is matches another GateError by code, so callers can test against the
// sentinels below with errors.Is.
func (e *GateError) Is(target error) bool {
	t, ok := target.(*GateError)
	return ok && t.Code == e.Code
}

var (
	ErrEmptyInput = &GateError{
		Kind: KindInput, Code: CodeEmptyInput,
		Title: "ACCESS DENIED", Message: "Please enter a code.",
	}
	ErrInvalidCode = &GateError{
		Kind: KindInput, Code: CodeInvalidCode,
		Title: "ACCESS DENIED", Message: "Invalid security code.",
	}
	ErrCodeNotActive = &GateError{
		Kind: KindAuthorization, Code: CodeNotActive,
		Title: "ACCESS DENIED", Message: "This code is not active yet.",
	}
	ErrCodeExpired = &GateError{
		Kind: KindAuthorization, Code: CodeExpired,
		Title: "CODE EXPIRED", Message: "This one-time code has already been redeemed.",
	}
	ErrPersistence = &GateError{
		Kind: KindPersistence, Code: CodePersistenceError,
		Title: "ERROR", Message: "Failed to redeem code. Try again.",
	}
)

func wrapGate(base *GateError, err error) *GateError {
	e := *base
	e.Err = err
	return &e
}

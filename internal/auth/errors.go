package auth

import (
	"errors"
	"fmt"
)

// Code classifies identity failures. Raw provider codes never leave this package.
type Code string

const (
	CodeInvalidCredentials  Code = "invalid-credentials"
	CodeEmailInUse          Code = "email-in-use"
	CodeWeakPassword        Code = "weak-password"
	CodeTooManyRequests     Code = "too-many-requests"
	CodeOperationNotAllowed Code = "operation-not-allowed"
	CodeInvalidEmail        Code = "invalid-email"
	CodeUnknown             Code = "unknown"
)

// MinPasswordLength matches the Firebase password policy.
const MinPasswordLength = 6

type AuthError struct {
	Code Code
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Code, e.Err)
	}
	return "auth: " + string(e.Code)
}

func (e *AuthError) Unwrap() error { return e.Err }

// CodeOf returns the code carried by err, or CodeUnknown.
func CodeOf(err error) Code {
	var aErr *AuthError
	if errors.As(err, &aErr) {
		return aErr.Code
	}
	return CodeUnknown
}

func asAuthError(err error) error {
	var aErr *AuthError
	if errors.As(err, &aErr) {
		return err
	}
	return &AuthError{Code: CodeUnknown, Err: err}
}

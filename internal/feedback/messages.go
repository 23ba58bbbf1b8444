// Package feedback turns domain errors into the messages and HTTP statuses
// shown to dashboard users. Provider codes and store causes never leave it.
package feedback

import (
	"errors"
	"net/http"

	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/auth"
	"github.com/GoSim-25-26J-441/go-staff-dashboard/internal/employees/domain"
)

const genericMessage = "Something went wrong. Please try again."

var authMessages = map[auth.Code]string{
	auth.CodeInvalidCredentials:  "Invalid email or password.",
	auth.CodeEmailInUse:          "An account with this email already exists.",
	auth.CodeWeakPassword:        "Password must be at least 6 characters.",
	auth.CodeTooManyRequests:     "Too many attempts. Please try again later.",
	auth.CodeOperationNotAllowed: "This sign-in method is not enabled.",
	auth.CodeInvalidEmail:        "Please enter a valid email address.",
	auth.CodeUnknown:             genericMessage,
}

var authStatuses = map[auth.Code]int{
	auth.CodeInvalidCredentials:  http.StatusUnauthorized,
	auth.CodeEmailInUse:          http.StatusConflict,
	auth.CodeWeakPassword:        http.StatusBadRequest,
	auth.CodeTooManyRequests:     http.StatusTooManyRequests,
	auth.CodeOperationNotAllowed: http.StatusForbidden,
	auth.CodeInvalidEmail:        http.StatusBadRequest,
	auth.CodeUnknown:             http.StatusBadGateway,
}

var opMessages = map[string]string{
	domain.OpList:   "Failed to fetch employees.",
	domain.OpGet:    "Failed to fetch employee.",
	domain.OpCreate: "Failed to create employee.",
	domain.OpUpdate: "Failed to update employee.",
	domain.OpDelete: "Failed to delete employee.",
}

// Message returns the user-facing text for err. It returns "" for nil.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var (
		aErr *auth.AuthError
		vErr *domain.ValidationError
		fErr *domain.FetchError
		wErr *domain.WriteError
	)
	switch {
	case errors.As(err, &aErr):
		if msg, ok := authMessages[aErr.Code]; ok {
			return msg
		}
	case errors.Is(err, domain.ErrNotFound):
		return "Employee not found."
	case errors.As(err, &vErr):
		return vErr.Error()
	case errors.As(err, &fErr):
		return opMessage(fErr.Op)
	case errors.As(err, &wErr):
		return opMessage(wErr.Op)
	}
	return genericMessage
}

// Status returns the HTTP status code for err.
func Status(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var (
		aErr *auth.AuthError
		vErr *domain.ValidationError
		fErr *domain.FetchError
		wErr *domain.WriteError
	)
	switch {
	case errors.As(err, &aErr):
		if status, ok := authStatuses[aErr.Code]; ok {
			return status
		}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.As(err, &fErr), errors.As(err, &wErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func opMessage(op string) string {
	if msg, ok := opMessages[op]; ok {
		return msg
	}
	return genericMessage
}

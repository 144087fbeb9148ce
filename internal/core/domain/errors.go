package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a client-side error with a structured error code.
//
// Message is the fixed, user-safe text. Details is only ever filled with
// text produced by this client (never by the server). Cause keeps the
// underlying error for logs and must not be rendered to users.
type DomainError struct {
	Code    string // Error code (e.g., "ME-AUTH-1104")
	Message string // User-facing message
	Details string // Optional client-generated detail
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// UserMessage returns the text that may be shown to a user for err.
//
// Only the fixed message of the outermost DomainError is returned; causes,
// server responses and status codes never leak through. Validation errors
// show their client-side detail. Unknown errors map to the generic
// server-error message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var de *DomainError
	if !errors.As(err, &de) {
		return ErrServer.Message
	}
	if de.Code == ErrValidation.Code && de.Details != "" {
		return de.Details
	}
	return de.Message
}

// ============================================================================
// Validation Errors (VALD)
// ============================================================================

var (
	// ErrValidation indicates malformed client input, caught before any network call.
	ErrValidation = NewDomainError("ME-VALD-1001", "Please check your input and try again.")
)

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrLoginFailed is the single outcome of every rejected login attempt.
	// Unknown user, wrong password, validation arrays and server faults all
	// look identical to the caller.
	ErrLoginFailed = NewDomainError("ME-AUTH-1101", "Invalid credentials. Please try again.")

	// ErrNoRefreshToken indicates a refresh was requested without a refresh token.
	ErrNoRefreshToken = NewDomainError("ME-AUTH-1102", "No active session. Please log in.")

	// ErrRefreshRejected indicates the server refused the refresh or answered malformed.
	ErrRefreshRejected = NewDomainError("ME-AUTH-1103", "Your session could not be renewed. Please log in again.")

	// ErrSessionExpired is raised when a refresh following a 401 fails.
	ErrSessionExpired = NewDomainError("ME-AUTH-1104", "Your session has expired. Please log in again.")

	// ErrUnauthorized is raised on a second consecutive 401.
	ErrUnauthorized = NewDomainError("ME-AUTH-1105", "You are not authorized. Please log in again.")

	// ErrLoginRequired is raised by the route guard for unauthenticated access.
	ErrLoginRequired = NewDomainError("ME-AUTH-1106", "Please log in to continue.")

	// ErrPasswordChangeRejected indicates the server refused a password change.
	ErrPasswordChangeRejected = NewDomainError("ME-AUTH-1107", "Unable to change password. Please check your current password and try again.")
)

// ============================================================================
// Transport Errors (NETW)
// ============================================================================

var (
	// ErrNetwork indicates a transport-level failure.
	ErrNetwork = NewDomainError("ME-NETW-1201", "Unable to reach the server. Please check your connection and try again.")
)

// ============================================================================
// System Errors (SYST)
// ============================================================================

var (
	// ErrServer indicates the server failed to process the request.
	ErrServer = NewDomainError("ME-SYST-1301", "Something went wrong. Please try again later.")

	// ErrRequestRejected indicates the server refused the request.
	ErrRequestRejected = NewDomainError("ME-SYST-1302", "The request could not be completed. Please try again.")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = NewDomainError("ME-SYST-1303", "The requested information could not be found.")

	// ErrStorage indicates local storage failed.
	ErrStorage = NewDomainError("ME-SYST-1304", "Local storage is unavailable.")
)

// ============================================================================
// Certificate Errors (CERT)
// ============================================================================

var (
	// ErrCertificateNotFound indicates no certificate matches a verification lookup.
	ErrCertificateNotFound = NewDomainError("ME-CERT-1601", "No certificate matches that number.")
)

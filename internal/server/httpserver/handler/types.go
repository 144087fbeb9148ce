package handler

import (
	"time"

	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
)

// Response is the envelope of every JSON response.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
	}
}

// LoginRequest is the body of POST /api/session/login.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// SessionResponse describes the session state.
type SessionResponse struct {
	Authenticated bool                      `json:"authenticated"`
	Loading       bool                      `json:"loading"`
	User          *domain.AuthenticatedUser `json:"user,omitempty"`
}

// ChangePasswordRequest is the body of POST /api/portal/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// MessageResponse carries a confirmation text.
type MessageResponse struct {
	Message string `json:"message"`
}

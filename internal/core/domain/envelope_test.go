package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantOK   bool
		wantErr  *DomainError
		wantMsg  string
		wantData string
	}{
		{
			name:     "ok envelope",
			status:   200,
			body:     `{"status":200,"data":{"id":"1"},"message":"done"}`,
			wantOK:   true,
			wantMsg:  "done",
			wantData: `{"id":"1"}`,
		},
		{
			name:   "ok without envelope status",
			status: 201,
			body:   `{"data":[1,2]}`,
			wantOK: true,
		},
		{
			name:   "empty 2xx body",
			status: 204,
			body:   "",
			wantOK: true,
		},
		{
			name:    "envelope status overrides http success",
			status:  200,
			body:    `{"status":401,"message":"User not found"}`,
			wantErr: ErrUnauthorized,
		},
		{
			name:    "validation array",
			status:  400,
			body:    `{"errors":{"Password":["The Password field is required."]},"status":400}`,
			wantErr: ErrRequestRejected,
		},
		{
			name:    "errors member on 2xx",
			status:  200,
			body:    `{"errors":["bad"]}`,
			wantErr: ErrRequestRejected,
		},
		{
			name:    "success false",
			status:  200,
			body:    `{"success":false,"message":"nope"}`,
			wantErr: ErrRequestRejected,
		},
		{
			name:    "empty errors member is fine",
			status:  200,
			body:    `{"errors":[],"data":null}`,
			wantOK:  true,
			wantErr: nil,
		},
		{
			name:    "not found",
			status:  404,
			body:    `{"message":"no such thing"}`,
			wantErr: ErrNotFound,
		},
		{
			name:    "server error",
			status:  500,
			body:    `<html>stack trace</html>`,
			wantErr: ErrServer,
		},
		{
			name:    "malformed 2xx body",
			status:  200,
			body:    `not json`,
			wantErr: ErrServer,
		},
		{
			name:    "forbidden",
			status:  403,
			body:    ``,
			wantErr: ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParseEnvelope(tt.status, []byte(tt.body))
			if r.OK() != tt.wantOK {
				t.Fatalf("OK() = %v, want %v (err=%v)", r.OK(), tt.wantOK, r.Err)
			}
			if tt.wantErr != nil && !errors.Is(r.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", r.Err, tt.wantErr)
			}
			if tt.wantMsg != "" && r.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", r.Message, tt.wantMsg)
			}
			if tt.wantData != "" && string(r.Data) != tt.wantData {
				t.Errorf("Data = %s, want %s", r.Data, tt.wantData)
			}
		})
	}
}

func TestParseEnvelope_ErrorKeepsServerTextInCauseOnly(t *testing.T) {
	r := ParseEnvelope(400, []byte(`{"errors":{"Email":["Unknown user alice"]}}`))
	if r.OK() {
		t.Fatal("expected Err result")
	}
	if strings.Contains(UserMessage(r.Err), "alice") {
		t.Errorf("UserMessage leaked server text: %q", UserMessage(r.Err))
	}
	if r.Err.Cause == nil || !strings.Contains(r.Err.Cause.Error(), "alice") {
		t.Errorf("Cause should keep the server text for logs, got %v", r.Err.Cause)
	}
}

func TestResult_Decode(t *testing.T) {
	r := ParseEnvelope(200, []byte(`{"status":200,"data":{"accessToken":"A","refreshToken":"R"}}`))

	var tok Tokens
	if err := r.Decode(&tok); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if tok.AccessToken != "A" || tok.RefreshToken != "R" {
		t.Errorf("Decode() = %+v", tok)
	}

	var empty Tokens
	if err := (Result{}).Decode(&empty); err != nil {
		t.Errorf("Decode() on empty result error = %v", err)
	}

	bad := ParseEnvelope(200, []byte(`{"data":"not an object"}`))
	if err := bad.Decode(&tok); !errors.Is(err, ErrServer) {
		t.Errorf("Decode() type mismatch error = %v, want ErrServer", err)
	}

	failed := ParseEnvelope(500, nil)
	if err := failed.Decode(&tok); !errors.Is(err, ErrServer) {
		t.Errorf("Decode() on Err result = %v, want ErrServer", err)
	}
}

package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Envelope is the uniform JSON wrapper returned by the backend.
//
// Every field is optional on the wire. Status is a pointer so an absent
// status can be told apart from a zero one.
type Envelope struct {
	Status  *int            `json:"status,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Errors  json.RawMessage `json:"errors,omitempty"`
	Success *bool           `json:"success,omitempty"`
}

// Result is the tagged outcome of a backend call.
//
// Exactly one of the two shapes is populated: Ok carries Data and Message,
// Err carries a DomainError whose Cause holds the raw server text for logs.
type Result struct {
	Data    json.RawMessage
	Message string
	Err     *DomainError
}

// OK reports whether the result is the Ok variant.
func (r Result) OK() bool {
	return r.Err == nil
}

// Decode unmarshals the Ok payload into v.
//
// A result without data leaves v untouched. Decoding an Err result returns
// the error itself.
func (r Result) Decode(v any) error {
	if r.Err != nil {
		return r.Err
	}
	if len(r.Data) == 0 || bytes.Equal(r.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return ErrServer.WithCause(fmt.Errorf("decode data: %w", err))
	}
	return nil
}

// ParseEnvelope turns an HTTP status and response body into a Result.
//
// Success requires a 2xx HTTP status, an envelope status that is absent or
// 2xx, no "errors" member and no explicit success=false. An empty 2xx body
// is treated as Ok with no data. Non-JSON 2xx bodies are malformed and map
// to ErrServer.
func ParseEnvelope(status int, body []byte) Result {
	body = bytes.TrimSpace(body)

	var env Envelope
	decoded := len(body) > 0 && json.Unmarshal(body, &env) == nil

	if status < 200 || status >= 300 {
		return Result{Err: statusError(status).WithCause(serverText(status, body))}
	}

	if len(body) == 0 {
		return Result{}
	}
	if !decoded {
		return Result{Err: ErrServer.WithCause(serverText(status, body))}
	}

	if env.Status != nil && (*env.Status < 200 || *env.Status >= 300) {
		return Result{Err: statusError(*env.Status).WithCause(serverText(*env.Status, body))}
	}
	if hasErrors(env.Errors) || (env.Success != nil && !*env.Success) {
		return Result{Err: ErrRequestRejected.WithCause(serverText(status, body))}
	}

	return Result{Data: env.Data, Message: env.Message}
}

func statusError(status int) *DomainError {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 400 && status < 500:
		return ErrRequestRejected
	default:
		return ErrServer
	}
}

func hasErrors(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "[]", "{}":
		return false
	}
	return true
}

// serverText keeps the raw response for debug logging only.
func serverText(status int, body []byte) error {
	const limit = 512
	if len(body) > limit {
		body = body[:limit]
	}
	return fmt.Errorf("server status %d: %s", status, body)
}

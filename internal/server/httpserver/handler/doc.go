// Package handler provides the HTTP handlers of the local gateway.
//
// The handlers are a thin JSON front over the session context and the
// portal services:
//
//   - session.go: session state, login and logout
//   - portal.go: the logged-in student's records (guarded by the router)
//   - public.go: course catalog, certificate verification, contact form
//   - health.go: liveness
//
// Error responses carry only the fixed user message of the domain error,
// never backend text or tokens.
package handler

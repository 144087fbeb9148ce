// Package connection talks to the institute backend.
//
//   - http.go: the Dispatcher, which attaches bearer tokens and retries
//     once after a token refresh
//   - refresh.go: the single-flight refresh state machine
//   - manager.go: named backend profiles
package connection

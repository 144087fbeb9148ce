// Package tlsroots manages TLS material for maxedu.
//
// Two concerns live here:
//
//   - roots.go: trusted roots for backend requests (system pool plus an
//     optional CA file)
//   - watcher.go: the serve gateway certificate, reloaded when its files
//     change
package tlsroots

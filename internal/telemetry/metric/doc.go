// Package metric provides Prometheus metrics for the maxedu client.
//
// Metrics include:
//
//   - Backend request counts and latency, by method and status class
//   - Token refresh outcomes and session terminations
//   - Login outcomes
//   - Gateway request counts and latency
//
// The gateway exposes them at /metrics in Prometheus format.
package metric

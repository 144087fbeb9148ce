// Package logger is the structured logger of maxedu, built on log/slog.
//
// New turns the log section of the configuration (level, text or json
// format) and the --verbose flag into a Logger. All loggers share one
// level, which SetLevel changes when the gateway reloads its config.
//
// Access tokens, refresh tokens and passwords never reach the output
// unmasked: every attribute passes through the redaction in redact.go.
package logger

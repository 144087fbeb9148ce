// Package repl provides the interactive "maxedu shell".
//
//   - repl.go: read-eval-print loop and built-in commands
//   - args.go: shell-style argument splitting
//   - completer.go: command prefix matching for help and suggestions
//   - history.go: command history persistence
//
// Commands are executed by a caller-supplied Executor, so every line runs
// against the same session.
package repl

// Package command provides the maxedu CLI commands.
//
// This package defines all commands using urfave/cli/v2:
//
//   - root.go: App, global flags, config loading and error display
//   - runtime.go: the per-process wiring of stores, services and session
//   - auth.go: login, logout, status, refresh, passwd
//   - portal.go: student profile, courses, fees, certificates
//   - profiles.go: backend profile management
//   - public.go: catalog, certificate verification, contact form
//   - config.go: configuration subcommand group
//   - serve.go: the local JSON gateway
//   - shell.go: the interactive shell
//
// Commands that need a logged-in student are wrapped with guarded, which
// applies the same route guard as the gateway.
package command

// Package main provides the entry point for maxedu.
//
// maxedu is the command-line client of the Max Education student portal.
// It keeps the student's session on disk, renews the access token
// transparently and exposes the portal as commands:
//
//   - Session: login, logout, status, refresh, passwd
//   - Student portal: profile, courses, fees, certificates
//   - Public pages: catalog, verify, contact
//   - Backends: profile list, use, add, remove
//   - Local gateway: serve
//
// Usage:
//
//	maxedu login asha@example.edu
//	maxedu fees --wide
//	maxedu verify MAX-2024-0042 -o json
//	maxedu shell
package main

package domain

import (
	"regexp"
	"strings"
)

// IdentifierKind tells how a login identifier is sent to the server.
type IdentifierKind string

const (
	IdentifierEmail    IdentifierKind = "email"
	IdentifierUserName IdentifierKind = "userName"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ClassifyIdentifier returns IdentifierEmail when the identifier contains an
// "@" followed by a domain-like suffix, IdentifierUserName otherwise.
func ClassifyIdentifier(identifier string) IdentifierKind {
	if IsEmail(identifier) {
		return IdentifierEmail
	}
	return IdentifierUserName
}

// IsEmail reports whether s looks like local@domain.tld.
func IsEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// LoginPayload builds the request body for the login endpoint.
func LoginPayload(identifier, password string) map[string]string {
	identifier = strings.TrimSpace(identifier)
	return map[string]string{
		string(ClassifyIdentifier(identifier)): identifier,
		"password":                             password,
	}
}

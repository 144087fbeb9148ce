package logger

import (
	"log/slog"
	"regexp"
	"strings"
)

const (
	bearerPrefix = "Bearer "
	redacted     = "[redacted]"
)

// jwtShape matches a compact JWS. Its header always encodes `{"`, which is
// "eyJ" in base64url.
var jwtShape = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*$`)

// credentialKeys are key fragments of the login, refresh, revoke and
// password-change payloads and of the Authorization header.
var credentialKeys = []string{
	"password",
	"passwd",
	"token",
	"secret",
	"authorization",
	"cookie",
	"credential",
}

// redactSensitive is the ReplaceAttr hook of every handler built by New.
// A value shaped like a credential is masked whatever its key; any other
// non-empty string under a credential key is replaced entirely.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	case slog.KindString:
		v := a.Value.String()
		if v == "" {
			return a
		}
		if masked, ok := maskCredential(v); ok {
			return slog.String(a.Key, masked)
		}
		if IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redacted)
		}
	}
	return a
}

// maskCredential masks a bearer header or a JWT. A JWT keeps the last four
// characters of its signature so two tokens can be told apart in a log.
func maskCredential(v string) (string, bool) {
	switch {
	case strings.HasPrefix(v, bearerPrefix):
		return bearerPrefix + "***", true
	case jwtShape.MatchString(v):
		if len(v) < 16 {
			return "eyJ***", true
		}
		return "eyJ***" + v[len(v)-4:], true
	}
	return v, false
}

// RedactString returns v masked when it looks like a credential.
func RedactString(v string) string {
	masked, _ := maskCredential(v)
	return masked
}

// IsSensitiveKey reports whether an attribute key names a credential.
func IsSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, fragment := range credentialKeys {
		if strings.Contains(key, fragment) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether v is a bearer header value or a JWT.
func IsSensitiveValue(v string) bool {
	_, ok := maskCredential(v)
	return ok
}

package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens is the credential pair owned by the token store.
//
// Both halves are written and cleared together; a pair with only one half
// set is never persisted.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Complete reports whether both tokens are present.
func (t Tokens) Complete() bool {
	return t.AccessToken != "" && t.RefreshToken != ""
}

// Empty reports whether neither token is present.
func (t Tokens) Empty() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}

// AccessTokenExpiry decodes the exp claim of a JWT access token without
// verifying its signature.
//
// The result is informational only. Authentication state is defined by the
// presence of a token; the server stays the source of truth for validity.
func AccessTokenExpiry(accessToken string) (time.Time, bool) {
	if accessToken == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

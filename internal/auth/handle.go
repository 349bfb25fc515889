// ABOUTME: Signed session handles stored in the browser session cookie
// ABOUTME: A handle names one session id and is only valid for this site's cookie

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Handle errors
var (
	ErrInvalidHandle = errors.New("invalid session handle")
	ErrExpiredHandle = errors.New("session handle expired")
)

const (
	handleIssuer   = "luxriel"
	handleAudience = "luxriel-session"
)

// handleClaims carries the session id in the JWT ID. Handles minted for any
// other issuer or audience are rejected even when the secret matches.
type handleClaims struct {
	jwt.RegisteredClaims
}

func (s *Sessions) parser() *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(handleIssuer),
		jwt.WithAudience(handleAudience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
}

// issue signs a handle for sessionID valid for the session lifetime.
func (s *Sessions) issue(sessionID string) (string, error) {
	now := time.Now()
	claims := handleClaims{jwt.RegisteredClaims{
		ID:        sessionID,
		Issuer:    handleIssuer,
		Audience:  jwt.ClaimStrings{handleAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing session handle: %w", err)
	}
	return signed, nil
}

// verify returns the session id named by a handle.
func (s *Sessions) verify(handle string) (string, error) {
	var claims handleClaims
	_, err := s.parser().ParseWithClaims(handle, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrExpiredHandle
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrInvalidHandle, err)
	case claims.ID == "":
		return "", fmt.Errorf("%w: no session id", ErrInvalidHandle)
	}
	return claims.ID, nil
}

// Package common defines shared constants, random helpers and sentinel
// errors used across the Verixa server and CLI. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("invalid credentials")
	ErrorValidation   = errors.New("validation error")

	// Verification flow.
	ErrAlreadyVerified = errors.New("user is already verified")

	// Token errors. ErrInvalidToken covers bad signatures, malformed payloads
	// and tokens of the wrong kind.
	ErrMissingToken         = errors.New("missing token")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrRefreshTokenMismatch = errors.New("refresh token does not match stored value")
	ErrLogoutFailed         = errors.New("error logging out")

	// Federation errors.
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrMissingCode         = errors.New("authorization code missing")
	ErrTokenExchangeFailed = errors.New("failed to get access token")
	ErrUpstreamFailure     = errors.New("identity provider failure")
)

package common

const (
	// RefreshTokenCookieName is the cookie carrying the refresh token.
	RefreshTokenCookieName = "refreshToken"

	// RefreshTokenCookiePath scopes the refresh cookie to the refresh endpoint
	// so browsers do not attach it to unrelated requests.
	RefreshTokenCookiePath = "/auth/refresh"

	// VerificationTokenSize is the number of random bytes in an email
	// verification token (hex encoded to twice the length).
	VerificationTokenSize = 32
)

// Package auth issues and verifies the signed access and refresh tokens
// handed out by the session manager.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/verixa/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind separates access tokens from refresh tokens so one can never be
// presented in place of the other.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims is the JWT payload: the registered claims (sub, exp, iat, jti) plus
// the user id and token kind.
type Claims struct {
	jwt.RegisteredClaims
	UserID string    `json:"userId"`
	Kind   TokenKind `json:"kind"`
}

// TokenService signs tokens with an HMAC secret held by the server.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService returns a TokenService using HS256 and the given lifetimes.
func NewTokenService(secret []byte, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// RefreshTTL is the lifetime of issued refresh tokens; the HTTP layer uses it
// as the cookie Max-Age.
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccessToken returns a short-lived access token for userID.
func (s *TokenService) IssueAccessToken(userID string) (string, error) {
	return s.issue(userID, KindAccess, s.accessTTL)
}

// IssueRefreshToken returns a long-lived refresh token for userID.
func (s *TokenService) IssueRefreshToken(userID string) (string, error) {
	return s.issue(userID, KindRefresh, s.refreshTTL)
}

// VerifyAccessToken checks signature, expiry and kind and returns the subject.
func (s *TokenService) VerifyAccessToken(token string) (string, error) {
	return s.verify(token, KindAccess)
}

// VerifyRefreshToken checks signature, expiry and kind and returns the subject.
func (s *TokenService) VerifyRefreshToken(token string) (string, error) {
	return s.verify(token, KindRefresh)
}

func (s *TokenService) issue(userID string, kind TokenKind, ttl time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Kind:   kind,
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("error signing %s token: %w", kind, err)
	}
	return tokenString, nil
}

// verify maps every jwt failure onto ErrTokenExpired or ErrInvalidToken.
func (s *TokenService) verify(tokenString string, kind TokenKind) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Kind != kind || claims.UserID == "" || claims.Subject != claims.UserID {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}

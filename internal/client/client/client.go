package client

import (
	"context"
)

// User is the profile returned by GET /auth/me.
type User struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	IsVerified    bool    `json:"isVerified"`
	OAuthProvider *string `json:"oauthProvider"`
}

type Client interface {
	Register(ctx context.Context, email string, password []byte) (string, error)
	Login(ctx context.Context, email string, password []byte) error
	Me(ctx context.Context) (*User, error)
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	ResendVerification(ctx context.Context, email string) error
	LoggedIn() bool
}

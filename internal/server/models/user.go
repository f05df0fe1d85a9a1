// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a local or federated account.
//
// PasswordHash holds a bcrypt hash for local accounts and
// cryptox.NoPasswordSentinel for accounts created through OAuth. An empty
// RefreshToken means no active session.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	RefreshToken string
	IsVerified   bool

	VerificationToken          *string
	VerificationTokenExpiresAt *time.Time

	OAuthProvider   *string
	OAuthProviderID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FederatedIdentity is the account identity reported by an OAuth provider.
type FederatedIdentity struct {
	Provider   string
	ProviderID string
	Email      string
}

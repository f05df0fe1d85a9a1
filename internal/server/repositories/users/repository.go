// Package users declares the credential store contract and its PostgreSQL
// implementation.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/verixa/internal/server/models"
)

// Repository persists user records. Implementations return
// common.ErrorNotFound for missing rows and common.ErrorAlreadyExists for
// unique-key collisions (email or federated identity).
type Repository interface {
	// Create inserts a new user. An empty ID is assigned by the repository.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// UpsertFederated returns the user owning identity, creating a verified
	// account with the given password hash when none exists. Repeated calls
	// for the same identity resolve to the same record.
	UpsertFederated(ctx context.Context, identity models.FederatedIdentity, passwordHash string) (*models.User, error)

	// SetRefreshToken overwrites the stored refresh token.
	SetRefreshToken(ctx context.Context, userID, token string) error

	// ClearRefreshToken clears the stored refresh token only if it still
	// equals token and reports whether a row was changed.
	ClearRefreshToken(ctx context.Context, userID, token string) (bool, error)

	SetVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) error
}

package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/verixa/internal/common"
	"github.com/dmitrijs2005/verixa/internal/dbx"
	"github.com/dmitrijs2005/verixa/internal/server/models"
	"github.com/google/uuid"
)

const userColumns = `id, email, password_hash, refresh_token, is_verified,
		verification_token, verification_token_expires_at,
		oauth_provider, oauth_provider_id, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO users (id, email, password_hash, is_verified, oauth_provider, oauth_provider_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.IsVerified, user.OAuthProvider, user.OAuthProviderID,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) UpsertFederated(ctx context.Context, identity models.FederatedIdentity, passwordHash string) (*models.User, error) {
	query :=
		`INSERT INTO users (id, email, password_hash, is_verified, oauth_provider, oauth_provider_id)
		 VALUES ($1, $2, $3, TRUE, $4, $5)
		 ON CONFLICT (oauth_provider, oauth_provider_id) DO UPDATE SET updated_at = NOW()
		 RETURNING ` + userColumns

	user, err := r.getOne(ctx, query,
		uuid.NewString(), identity.Email, passwordHash, identity.Provider, identity.ProviderID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, err
	}
	return user, nil
}

func (r *PostgresRepository) SetRefreshToken(ctx context.Context, userID, token string) error {
	query :=
		`UPDATE users SET refresh_token = $2, updated_at = NOW()
		 WHERE id = $1`

	return r.execOne(ctx, query, userID, token)
}

func (r *PostgresRepository) ClearRefreshToken(ctx context.Context, userID, token string) (bool, error) {
	query :=
		`UPDATE users SET refresh_token = NULL, updated_at = NOW()
		 WHERE id = $1 AND refresh_token = $2`

	res, err := r.db.ExecContext(ctx, query, userID, token)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) SetVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	query :=
		`UPDATE users SET verification_token = $2, verification_token_expires_at = $3, updated_at = NOW()
		 WHERE id = $1`

	return r.execOne(ctx, query, userID, token, expiresAt)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	var (
		user         models.User
		refreshToken sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &refreshToken, &user.IsVerified,
		&user.VerificationToken, &user.VerificationTokenExpiresAt,
		&user.OAuthProvider, &user.OAuthProviderID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.RefreshToken = refreshToken.String
	return &user, nil
}

// Package services contains server-side business logic. This file implements
// UserService, the session manager: registration, login, logout, refresh,
// verification resend and sign-in of federated identities.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/verixa/internal/common"
	"github.com/dmitrijs2005/verixa/internal/cryptox"
	"github.com/dmitrijs2005/verixa/internal/dbx"
	"github.com/dmitrijs2005/verixa/internal/logging"
	"github.com/dmitrijs2005/verixa/internal/server/auth"
	"github.com/dmitrijs2005/verixa/internal/server/config"
	"github.com/dmitrijs2005/verixa/internal/server/mailer"
	"github.com/dmitrijs2005/verixa/internal/server/models"
	"github.com/dmitrijs2005/verixa/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService provides authentication-related operations. Each user has at
// most one active refresh token; issuing a new one replaces the previous one.
type UserService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	tokens          *auth.TokenService
	mailer          mailer.Mailer
	log             logging.Logger
	bcryptCost      int
	verificationTTL time.Duration
	baseURL         string
	dummyHash       string
	now             func() time.Time
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenService,
	mail mailer.Mailer, cfg *config.Config, log logging.Logger) *UserService {

	s := &UserService{
		db:              db,
		repomanager:     m,
		tokens:          tokens,
		mailer:          mail,
		log:             log.With("module", "users"),
		bcryptCost:      cfg.BcryptCost,
		verificationTTL: cfg.VerificationTokenValidityDuration,
		baseURL:         cfg.BaseURL(),
		now:             time.Now,
	}
	if s.verificationTTL <= 0 {
		s.verificationTTL = 30 * time.Minute
	}

	// Compared against on unknown emails so both login failures cost one bcrypt round.
	s.dummyHash, _ = cryptox.HashPassword([]byte("verixa-dummy-password"), s.bcryptCost)
	return s
}

// Register creates an unverified local account and returns its id. No tokens
// are issued. A taken email yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, password string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", fmt.Errorf("%w: password is required", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)

	_, err = repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return "", common.ErrorAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return "", fmt.Errorf("error looking up user: %w", err)
	}

	hash, err := cryptox.HashPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return "", common.ErrorAlreadyExists
		}
		return "", fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user.ID, nil
}

// Login verifies credentials and returns a new TokenPair, replacing any refresh
// token stored for the user. Unknown emails and wrong passwords both yield
// common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	var pair *TokenPair

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByEmail(ctx, strings.TrimSpace(email))
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				cryptox.CheckPassword(s.dummyHash, []byte(password))
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error looking up user: %w", err)
		}

		if !cryptox.CheckPassword(user.PasswordHash, []byte(password)) {
			return common.ErrorUnauthorized
		}

		pair, err = s.issueTokenPair(ctx, repo, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// Logout verifies refreshToken and clears it from its owner's record. A token
// that verifies but is no longer the stored one is already inactive, so that
// case succeeds without a write.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return common.ErrMissingToken
	}

	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrLogoutFailed, err)
	}

	cleared, err := s.repomanager.Users(s.db).ClearRefreshToken(ctx, userID, refreshToken)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrLogoutFailed, err)
	}
	if !cleared {
		s.log.Debug(ctx, "logout with inactive refresh token", "user_id", userID)
	}

	s.log.Info(ctx, "user logged out", "user_id", userID)
	return nil
}

// Refresh verifies refreshToken, checks it against the stored token and
// returns a new access token. The refresh token itself is not rotated.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", common.ErrMissingToken
	}

	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrRefreshTokenMismatch
		}
		return "", fmt.Errorf("error looking up user: %w", err)
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return "", common.ErrRefreshTokenMismatch
	}

	access, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("error issuing access token: %w", err)
	}
	return access, nil
}

// ResendVerification stores a fresh verification token for an unverified
// user and hands the verification email to the mailer.
func (s *UserService) ResendVerification(ctx context.Context, email string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error looking up user: %w", err)
	}
	if user.IsVerified {
		return common.ErrAlreadyVerified
	}

	token, err := common.MakeRandHexString(common.VerificationTokenSize)
	if err != nil {
		return fmt.Errorf("error generating verification token: %w", err)
	}

	now := s.now()
	if err := repo.SetVerificationToken(ctx, user.ID, token, now.Add(s.verificationTTL)); err != nil {
		return fmt.Errorf("error storing verification token: %w", err)
	}

	msg := mailer.NewVerificationMessage(user.Email, mailer.VerificationLink(s.baseURL, token), s.verificationTTL, now)
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("error sending verification email: %w", err)
	}

	s.log.Info(ctx, "verification email resent", "user_id", user.ID)
	return nil
}

// SignInFederated resolves the account linked to identity, creating a
// verified password-less account on first sight, and issues the same token
// pair a local login would.
func (s *UserService) SignInFederated(ctx context.Context, identity models.FederatedIdentity) (*TokenPair, string, error) {
	user, err := s.ResolveFederated(ctx, identity)
	if err != nil {
		return nil, "", err
	}

	pair, err := s.IssueTokens(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return pair, user.ID, nil
}

// ResolveFederated returns the user linked to identity, creating it if the
// identity is new. An email owned by a local account yields
// common.ErrorAlreadyExists.
func (s *UserService) ResolveFederated(ctx context.Context, identity models.FederatedIdentity) (*models.User, error) {
	if identity.Provider == "" || identity.ProviderID == "" || identity.Email == "" {
		return nil, fmt.Errorf("%w: incomplete federated identity", common.ErrorValidation)
	}

	user, err := s.repomanager.Users(s.db).UpsertFederated(ctx, identity, cryptox.NoPasswordSentinel)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error resolving federated user: %w", err)
	}

	s.log.Info(ctx, "federated identity resolved", "user_id", user.ID, "provider", identity.Provider)
	return user, nil
}

// IssueTokens issues a new pair for userID and stores the refresh token,
// replacing the previous one.
func (s *UserService) IssueTokens(ctx context.Context, userID string) (*TokenPair, error) {
	return s.issueTokenPair(ctx, s.repomanager.Users(s.db), userID)
}

// Authenticate verifies an access token and loads its subject.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, common.ErrMissingToken
	}

	userID, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	return user, nil
}

// RefreshTTL is the refresh token lifetime, used for the cookie Max-Age.
func (s *UserService) RefreshTTL() time.Duration {
	return s.tokens.RefreshTTL()
}

// --- helpers below ---

type refreshTokenSetter interface {
	SetRefreshToken(ctx context.Context, userID, token string) error
}

func (s *UserService) issueTokenPair(ctx context.Context, repo refreshTokenSetter, userID string) (*TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("error issuing access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("error issuing refresh token: %w", err)
	}
	if err := repo.SetRefreshToken(ctx, userID, refresh); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: malformed email", common.ErrorValidation)
	}
	return email, nil
}

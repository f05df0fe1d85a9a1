package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/verixa/internal/common"
	"github.com/dmitrijs2005/verixa/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository is a mutex-guarded in-process Repository. It enforces the
// same uniqueness rules as the PostgreSQL schema and backs service and
// handler tests.
type MemoryRepository struct {
	mu    sync.Mutex
	users map[string]*models.User
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*models.User), now: time.Now}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findLocked(func(u *models.User) bool { return u.Email == user.Email }) != nil {
		return nil, common.ErrorAlreadyExists
	}
	if user.OAuthProvider != nil && user.OAuthProviderID != nil &&
		r.findLocked(identityMatch(*user.OAuthProvider, *user.OAuthProviderID)) != nil {
		return nil, common.ErrorAlreadyExists
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = r.now()
	user.UpdatedAt = user.CreatedAt

	stored := *user
	r.users[user.ID] = &stored
	return user, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyOrNotFound(r.findLocked(func(u *models.User) bool { return u.Email == email }))
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyOrNotFound(r.users[id])
}

func (r *MemoryRepository) UpsertFederated(ctx context.Context, identity models.FederatedIdentity, passwordHash string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u := r.findLocked(identityMatch(identity.Provider, identity.ProviderID)); u != nil {
		u.UpdatedAt = r.now()
		return copyOrNotFound(u)
	}
	if r.findLocked(func(u *models.User) bool { return u.Email == identity.Email }) != nil {
		return nil, common.ErrorAlreadyExists
	}

	provider, providerID := identity.Provider, identity.ProviderID
	u := &models.User{
		ID:              uuid.NewString(),
		Email:           identity.Email,
		PasswordHash:    passwordHash,
		IsVerified:      true,
		OAuthProvider:   &provider,
		OAuthProviderID: &providerID,
		CreatedAt:       r.now(),
	}
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = u
	return copyOrNotFound(u)
}

func (r *MemoryRepository) SetRefreshToken(ctx context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.RefreshToken = token
	u.UpdatedAt = r.now()
	return nil
}

func (r *MemoryRepository) ClearRefreshToken(ctx context.Context, userID, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok || u.RefreshToken == "" || u.RefreshToken != token {
		return false, nil
	}
	u.RefreshToken = ""
	u.UpdatedAt = r.now()
	return true, nil
}

func (r *MemoryRepository) SetVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.VerificationToken = &token
	u.VerificationTokenExpiresAt = &expiresAt
	u.UpdatedAt = r.now()
	return nil
}

// Len returns the number of stored users.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *MemoryRepository) findLocked(match func(*models.User) bool) *models.User {
	for _, u := range r.users {
		if match(u) {
			return u
		}
	}
	return nil
}

func identityMatch(provider, providerID string) func(*models.User) bool {
	return func(u *models.User) bool {
		return u.OAuthProvider != nil && u.OAuthProviderID != nil &&
			*u.OAuthProvider == provider && *u.OAuthProviderID == providerID
	}
}

func copyOrNotFound(u *models.User) (*models.User, error) {
	if u == nil {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

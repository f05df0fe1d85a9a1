package users

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/verixa/internal/common"
	"github.com/dmitrijs2005/verixa/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Repository = (*MemoryRepository)(nil)
var _ Repository = (*PostgresRepository)(nil)

func TestMemoryRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	u, err := repo.Create(ctx, &models.User{Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)

	_, err = repo.Create(ctx, &models.User{Email: "a@x.com", PasswordHash: "h2"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = repo.GetByEmail(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	u, err := repo.Create(ctx, &models.User{Email: "a@x.com"})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.RefreshToken = "tampered"

	again, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, again.RefreshToken)
}

func TestMemoryRepository_RefreshTokenCompareAndClear(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	u, err := repo.Create(ctx, &models.User{Email: "a@x.com"})
	require.NoError(t, err)
	require.NoError(t, repo.SetRefreshToken(ctx, u.ID, "r1"))

	cleared, err := repo.ClearRefreshToken(ctx, u.ID, "other")
	require.NoError(t, err)
	assert.False(t, cleared)

	cleared, err = repo.ClearRefreshToken(ctx, u.ID, "r1")
	require.NoError(t, err)
	assert.True(t, cleared)

	got, _ := repo.GetByID(ctx, u.ID)
	assert.Empty(t, got.RefreshToken)

	assert.ErrorIs(t, repo.SetRefreshToken(ctx, "missing", "r"), common.ErrorNotFound)
}

func TestMemoryRepository_UpsertFederatedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	id := models.FederatedIdentity{Provider: "google", ProviderID: "g-1", Email: "g@x.com"}

	var (
		wg  sync.WaitGroup
		ids = make([]string, 8)
	)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := repo.UpsertFederated(ctx, id, "null")
			if err == nil {
				ids[i] = u.ID
			}
		}(i)
	}
	wg.Wait()

	for _, got := range ids {
		assert.Equal(t, ids[0], got)
	}
	assert.Equal(t, 1, repo.Len())

	u, err := repo.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, u.IsVerified)
	assert.Equal(t, "null", u.PasswordHash)
}

func TestMemoryRepository_UpsertFederatedEmailTaken(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.Create(ctx, &models.User{Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.UpsertFederated(ctx, models.FederatedIdentity{Provider: "google", ProviderID: "g", Email: "a@x.com"}, "null")
	assert.True(t, errors.Is(err, common.ErrorAlreadyExists))
}

func TestMemoryRepository_SetVerificationToken(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	u, err := repo.Create(ctx, &models.User{Email: "a@x.com"})
	require.NoError(t, err)

	exp := time.Now().Add(30 * time.Minute)
	require.NoError(t, repo.SetVerificationToken(ctx, u.ID, "vt", exp))

	got, _ := repo.GetByID(ctx, u.ID)
	require.NotNil(t, got.VerificationToken)
	assert.Equal(t, "vt", *got.VerificationToken)
	assert.True(t, got.VerificationTokenExpiresAt.Equal(exp))
}

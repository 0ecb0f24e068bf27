package postgres_test

import (
	"context"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/foodai/foodai-web/internal/domain"
	"github.com/foodai/foodai-web/internal/repository/postgres"
	"github.com/foodai/foodai-web/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPasswordResetRepository_Consume(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	users := postgres.NewUserRepository(testDB.DB)
	repo := postgres.NewPasswordResetRepository(testDB.DB)
	ctx := context.Background()
	now := time.Now().UTC()

	user := newUser("reset@example.com")
	require.NoError(t, users.Create(ctx, user))

	h := sha256.Sum256([]byte("reset-token"))
	token := &domain.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: h[:],
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, token))

	got, err := repo.GetByTokenHash(ctx, h[:])
	require.NoError(t, err)
	assert.True(t, got.Usable(now))
	assert.False(t, got.Usable(now.Add(2*time.Hour)), "expired tokens are unusable")

	require.NoError(t, repo.Consume(ctx, token.ID, now))
	assert.ErrorIs(t, repo.Consume(ctx, token.ID, now), gorm.ErrRecordNotFound)

	got, err = repo.GetByTokenHash(ctx, h[:])
	require.NoError(t, err)
	assert.False(t, got.Usable(now))
}

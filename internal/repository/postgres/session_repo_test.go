package postgres_test

import (
	"context"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/foodai/foodai-web/internal/domain"
	"github.com/foodai/foodai-web/internal/repository"
	"github.com/foodai/foodai-web/internal/repository/postgres"
	"github.com/foodai/foodai-web/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSession(userID uuid.UUID, token string, now time.Time) *domain.UserSession {
	h := sha256.Sum256([]byte(token))
	return &domain.UserSession{
		ID:               uuid.New(),
		UserID:           userID,
		RefreshTokenHash: h[:],
		ExpiresAt:        now.Add(time.Hour),
		CreatedAt:        now,
	}
}

func TestSessionRepository_Rotate(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	users := postgres.NewUserRepository(testDB.DB)
	repo := postgres.NewSessionRepository(testDB.DB)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	user := newUser("session@example.com")
	require.NoError(t, users.Create(ctx, user))

	first := newSession(user.ID, "first", now)
	require.NoError(t, repo.Create(ctx, first))

	got, err := repo.GetByTokenHash(ctx, first.RefreshTokenHash)
	require.NoError(t, err)
	assert.True(t, got.Active(now))

	second := newSession(user.ID, "second", now)
	require.NoError(t, repo.Rotate(ctx, first.ID, second, now))

	got, err = repo.GetByTokenHash(ctx, first.RefreshTokenHash)
	require.NoError(t, err)
	assert.False(t, got.Active(now), "rotated session must be revoked")
	require.NotNil(t, got.ReplacedBy)
	assert.Equal(t, second.ID, *got.ReplacedBy)
	assert.True(t, got.RotatedWithin(now, time.Second))
	assert.False(t, got.RotatedWithin(now.Add(2*time.Second), time.Second))

	byID, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Nil(t, byID.ReplacedBy)

	got, err = repo.GetByTokenHash(ctx, second.RefreshTokenHash)
	require.NoError(t, err)
	assert.True(t, got.Active(now))

	// A second rotation of the same session loses the race.
	third := newSession(user.ID, "third", now)
	err = repo.Rotate(ctx, first.ID, third, now)
	assert.ErrorIs(t, err, repository.ErrSessionConflict)

	_, err = repo.GetByTokenHash(ctx, third.RefreshTokenHash)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "losing rotation must not store its session")
}

func TestSessionRepository_Revoke(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	users := postgres.NewUserRepository(testDB.DB)
	repo := postgres.NewSessionRepository(testDB.DB)
	ctx := context.Background()
	now := time.Now().UTC()

	user := newUser("revoke@example.com")
	require.NoError(t, users.Create(ctx, user))

	a := newSession(user.ID, "a", now)
	b := newSession(user.ID, "b", now)
	c := newSession(user.ID, "c", now)
	for _, s := range []*domain.UserSession{a, b, c} {
		require.NoError(t, repo.Create(ctx, s))
	}

	require.NoError(t, repo.Revoke(ctx, a.ID, now))
	got, err := repo.GetByTokenHash(ctx, a.RefreshTokenHash)
	require.NoError(t, err)
	assert.NotNil(t, got.RevokedAt)

	require.NoError(t, repo.RevokeByUserID(ctx, user.ID, now))
	for _, s := range []*domain.UserSession{b, c} {
		got, err := repo.GetByTokenHash(ctx, s.RefreshTokenHash)
		require.NoError(t, err)
		assert.False(t, got.Active(now))
	}
}

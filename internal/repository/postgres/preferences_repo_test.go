package postgres_test

import (
	"context"
	"testing"

	"github.com/foodai/foodai-web/internal/domain"
	"github.com/foodai/foodai-web/internal/repository/postgres"
	"github.com/foodai/foodai-web/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPreferencesRepository_Upsert(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	users := postgres.NewUserRepository(testDB.DB)
	repo := postgres.NewPreferencesRepository(testDB.DB)
	ctx := context.Background()

	user := newUser("prefs@example.com")
	require.NoError(t, users.Create(ctx, user))

	_, err := repo.GetByUserID(ctx, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	tests := []struct {
		name      string
		goals     []string
		allergies []string
		custom    string
	}{
		{"first save", []string{"keto"}, []string{"nuts", "soy"}, "spicy"},
		{"overwrite", []string{"vegan", "lowFat"}, nil, ""},
		{"same values again", []string{"vegan", "lowFat"}, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs, err := domain.NewUserPreferences(user.ID, tt.goals, tt.allergies, tt.custom)
			require.NoError(t, err)
			require.NoError(t, repo.Upsert(ctx, prefs))

			got, err := repo.GetByUserID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.UniqueTags(tt.goals), got.DietGoalList())
			assert.Equal(t, domain.UniqueTags(tt.allergies), got.AllergyList())
			assert.Equal(t, tt.custom, got.Custom())

			var n int64
			require.NoError(t, testDB.DB.Model(&domain.UserPreferences{}).Where("user_id = ?", user.ID).Count(&n).Error)
			assert.Equal(t, int64(1), n)
		})
	}
}

func TestPreferencesRepository_UnknownUser(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewPreferencesRepository(testDB.DB)

	prefs, err := domain.NewUserPreferences(uuid.New(), []string{"keto"}, nil, "")
	require.NoError(t, err)
	assert.Error(t, repo.Upsert(context.Background(), prefs), "foreign key must reject unknown users")
}

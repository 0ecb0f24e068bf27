package service_test

import (
	"context"
	"testing"

	"github.com/foodai/foodai-web/internal/domain"
	"github.com/foodai/foodai-web/internal/repository/postgres"
	"github.com/foodai/foodai-web/internal/service"
	"github.com/foodai/foodai-web/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferencesService(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB, nil)
	prefsService := service.NewPreferencesService(repos.Preferences)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	got, err := prefsService.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.DietGoals)
	assert.Equal(t, []string{}, got.Allergies)
	assert.Equal(t, "", got.CustomPreferences)
	assert.Nil(t, got.UpdatedAt)

	tests := []struct {
		name    string
		input   service.SavePreferencesInput
		wantErr error
		want    []string
	}{
		{
			name:  "valid tags are deduplicated",
			input: service.SavePreferencesInput{DietGoals: []string{"keto", "keto", "paleo"}, Allergies: []string{"eggs"}},
			want:  []string{"keto", "paleo"},
		},
		{
			name:    "unknown diet goal",
			input:   service.SavePreferencesInput{DietGoals: []string{"atkins"}},
			wantErr: domain.ErrInvalidDietGoal,
		},
		{
			name:    "unknown allergy",
			input:   service.SavePreferencesInput{Allergies: []string{"peanuts"}},
			wantErr: domain.ErrInvalidAllergy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved, err := prefsService.Save(ctx, user.ID, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, saved.DietGoals)

			got, err := prefsService.Get(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.DietGoals)
			assert.NotNil(t, got.UpdatedAt)
		})
	}
}

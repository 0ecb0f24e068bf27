package postgres

import (
	"context"

	"github.com/foodai/foodai-web/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type preferencesRepository struct {
	db *gorm.DB
}

func NewPreferencesRepository(db *gorm.DB) *preferencesRepository {
	return &preferencesRepository{db: db}
}

func (r *preferencesRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserPreferences, error) {
	var prefs domain.UserPreferences
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&prefs).Error
	if err != nil {
		return nil, translate(err)
	}
	return &prefs, nil
}

// Upsert inserts prefs or replaces the tags and text of the user's existing row.
func (r *preferencesRepository) Upsert(ctx context.Context, prefs *domain.UserPreferences) error {
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"diet_goals", "allergies", "custom_preferences", "updated_at"}),
		}).
		Create(prefs).Error)
}

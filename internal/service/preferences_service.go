package service

import (
	"context"
	"errors"
	"time"

	"github.com/foodai/foodai-web/internal/domain"
	"github.com/foodai/foodai-web/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PreferencesService struct {
	prefsRepo repository.PreferencesRepository
}

func NewPreferencesService(prefsRepo repository.PreferencesRepository) *PreferencesService {
	return &PreferencesService{prefsRepo: prefsRepo}
}

// Preferences is the dietary profile as the API exposes it
type Preferences struct {
	DietGoals         []string   `json:"dietGoals"`
	Allergies         []string   `json:"allergies"`
	CustomPreferences string     `json:"customPreferences"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
}

// SavePreferencesInput contains the submitted form values
type SavePreferencesInput struct {
	DietGoals         []string
	Allergies         []string
	CustomPreferences string
}

// Get returns the user's preferences, or empty defaults if none were saved.
func (s *PreferencesService) Get(ctx context.Context, userID uuid.UUID) (*Preferences, error) {
	prefs, err := s.prefsRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return toPreferences(nil), nil
		}
		return nil, err
	}
	return toPreferences(prefs), nil
}

// Save replaces the user's preferences, creating the row on first save.
func (s *PreferencesService) Save(ctx context.Context, userID uuid.UUID, input SavePreferencesInput) (*Preferences, error) {
	prefs, err := domain.NewUserPreferences(userID, input.DietGoals, input.Allergies, input.CustomPreferences)
	if err != nil {
		return nil, err
	}
	if err := prefs.Validate(); err != nil {
		return nil, err
	}

	if err := s.prefsRepo.Upsert(ctx, prefs); err != nil {
		return nil, err
	}
	return toPreferences(prefs), nil
}

func toPreferences(p *domain.UserPreferences) *Preferences {
	out := &Preferences{
		DietGoals:         p.DietGoalList(),
		Allergies:         p.AllergyList(),
		CustomPreferences: p.Custom(),
	}
	if p != nil {
		updated := p.UpdatedAt
		out.UpdatedAt = &updated
	}
	return out
}

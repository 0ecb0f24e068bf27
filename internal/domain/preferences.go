package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserPreferences holds the dietary profile used to personalise scan results.
// There is at most one row per user.
type UserPreferences struct {
	ID                uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID            uuid.UUID      `json:"userId" gorm:"type:uuid;not null;uniqueIndex"`
	DietGoals         datatypes.JSON `json:"dietGoals" gorm:"type:jsonb;not null;default:'[]'"`
	Allergies         datatypes.JSON `json:"allergies" gorm:"type:jsonb;not null;default:'[]'"`
	CustomPreferences string         `json:"customPreferences" gorm:"type:text;not null;default:''"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName returns the table name for GORM
func (UserPreferences) TableName() string {
	return "user_preferences"
}

// NewUserPreferences builds a preferences row with de-duplicated tags.
func NewUserPreferences(userID uuid.UUID, dietGoals, allergies []string, custom string) (*UserPreferences, error) {
	goalsJSON, err := json.Marshal(UniqueTags(dietGoals))
	if err != nil {
		return nil, err
	}
	allergiesJSON, err := json.Marshal(UniqueTags(allergies))
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &UserPreferences{
		ID:                uuid.New(),
		UserID:            userID,
		DietGoals:         datatypes.JSON(goalsJSON),
		Allergies:         datatypes.JSON(allergiesJSON),
		CustomPreferences: custom,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// DietGoalList decodes the stored diet goals. A nil receiver yields an empty list.
func (p *UserPreferences) DietGoalList() []string {
	if p == nil {
		return []string{}
	}
	return decodeTags(p.DietGoals)
}

// AllergyList decodes the stored allergies. A nil receiver yields an empty list.
func (p *UserPreferences) AllergyList() []string {
	if p == nil {
		return []string{}
	}
	return decodeTags(p.Allergies)
}

// Custom returns the free-text preferences, empty for a nil receiver.
func (p *UserPreferences) Custom() string {
	if p == nil {
		return ""
	}
	return p.CustomPreferences
}

func decodeTags(raw datatypes.JSON) []string {
	tags := []string{}
	if len(raw) == 0 {
		return tags
	}
	if err := json.Unmarshal(raw, &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

// Validate checks every stored tag against the known diet goals and allergies
func (p *UserPreferences) Validate() error {
	for _, g := range p.DietGoalList() {
		if !DietGoal(g).IsValid() {
			return ErrInvalidDietGoal
		}
	}
	for _, a := range p.AllergyList() {
		if !Allergy(a).IsValid() {
			return ErrInvalidAllergy
		}
	}
	return nil
}

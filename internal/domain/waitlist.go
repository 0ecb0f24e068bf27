package domain

import (
	"time"

	"github.com/google/uuid"
)

// WaitlistEntry is a pre-launch signup. Email is unique at the storage layer.
type WaitlistEntry struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the table name for GORM
func (WaitlistEntry) TableName() string {
	return "waitlist"
}

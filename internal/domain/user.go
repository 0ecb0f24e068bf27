package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSession is the server side of a refresh token. Only the sha256 of the
// raw token is kept. A rotated session points at the session that replaced it.
type UserSession struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID           uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	RefreshTokenHash []byte     `json:"-" gorm:"type:bytea;uniqueIndex;not null"`
	ExpiresAt        time.Time  `json:"expiresAt" gorm:"not null"`
	RevokedAt        *time.Time `json:"revokedAt"`
	ReplacedBy       *uuid.UUID `json:"replacedBy" gorm:"type:uuid"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Active reports whether the session can still be exchanged at now.
func (s *UserSession) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// RotatedWithin reports whether the session was rotated no earlier than
// grace before now.
func (s *UserSession) RotatedWithin(now time.Time, grace time.Duration) bool {
	return s.ReplacedBy != nil && s.RevokedAt != nil && !now.After(s.RevokedAt.Add(grace))
}

type PasswordResetToken struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	TokenHash  []byte     `json:"-" gorm:"type:bytea;uniqueIndex;not null"`
	ExpiresAt  time.Time  `json:"expiresAt" gorm:"not null"`
	ConsumedAt *time.Time `json:"consumedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Usable reports whether the token can still be redeemed at now.
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return t.ConsumedAt == nil && now.Before(t.ExpiresAt)
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package repository

import (
	"context"
	"time"

	"github.com/foodai/foodai-web/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserSession, error)
	GetByTokenHash(ctx context.Context, hash []byte) (*domain.UserSession, error)
	// Rotate revokes old, marks it replaced by next and stores next in one
	// transaction. It fails with ErrSessionConflict if old was already revoked
	// by a concurrent refresh.
	Rotate(ctx context.Context, oldID uuid.UUID, next *domain.UserSession, now time.Time) error
	Revoke(ctx context.Context, id uuid.UUID, now time.Time) error
	RevokeByUserID(ctx context.Context, userID uuid.UUID, now time.Time) error
}

type PreferencesRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserPreferences, error)
	Upsert(ctx context.Context, prefs *domain.UserPreferences) error
}

type WaitlistRepository interface {
	// Probe performs a bounded read to confirm the table is reachable.
	Probe(ctx context.Context) error
	Create(ctx context.Context, entry *domain.WaitlistEntry) error
}

// WaitlistSchema creates the waitlist table on demand. It backs the opt-in
// bootstrap path; migrations are the normal way the table comes to exist.
type WaitlistSchema interface {
	CreateTable(ctx context.Context, withRLS bool) error
}

type PasswordResetRepository interface {
	Create(ctx context.Context, token *domain.PasswordResetToken) error
	GetByTokenHash(ctx context.Context, hash []byte) (*domain.PasswordResetToken, error)
	Consume(ctx context.Context, id uuid.UUID, now time.Time) error
}

type Repositories struct {
	User          UserRepository
	Session       SessionRepository
	Preferences   PreferencesRepository
	Waitlist      WaitlistRepository
	PasswordReset PasswordResetRepository
	// Schema runs with the application credentials; AdminSchema with the
	// elevated ones when configured, otherwise it is nil.
	Schema      WaitlistSchema
	AdminSchema WaitlistSchema
}

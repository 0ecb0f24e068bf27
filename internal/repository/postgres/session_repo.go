package postgres

import (
	"context"
	"time"

	"github.com/foodai/foodai-web/internal/domain"
	"github.com/foodai/foodai-web/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.UserSession) error {
	return translate(r.db.WithContext(ctx).Create(session).Error)
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserSession, error) {
	var session domain.UserSession
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

func (r *sessionRepository) GetByTokenHash(ctx context.Context, hash []byte) (*domain.UserSession, error) {
	var session domain.UserSession
	err := r.db.WithContext(ctx).First(&session, "refresh_token_hash = ?", hash).Error
	if err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

func (r *sessionRepository) Rotate(ctx context.Context, oldID uuid.UUID, next *domain.UserSession, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.UserSession{}).
			Where("id = ? AND revoked_at IS NULL", oldID).
			Updates(map[string]interface{}{"revoked_at": now, "replaced_by": next.ID})
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return repository.ErrSessionConflict
		}
		return translate(tx.Create(next).Error)
	})
}

func (r *sessionRepository) Revoke(ctx context.Context, id uuid.UUID, now time.Time) error {
	return translate(r.db.WithContext(ctx).
		Model(&domain.UserSession{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", now).Error)
}

func (r *sessionRepository) RevokeByUserID(ctx context.Context, userID uuid.UUID, now time.Time) error {
	return translate(r.db.WithContext(ctx).
		Model(&domain.UserSession{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error)
}

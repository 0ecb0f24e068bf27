package postgres

import (
	"context"
	"time"

	"github.com/foodai/foodai-web/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) *passwordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	return translate(r.db.WithContext(ctx).Create(token).Error)
}

func (r *passwordResetRepository) GetByTokenHash(ctx context.Context, hash []byte) (*domain.PasswordResetToken, error) {
	var token domain.PasswordResetToken
	err := r.db.WithContext(ctx).First(&token, "token_hash = ?", hash).Error
	if err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

// Consume marks the token used. A token that was already consumed yields
// gorm.ErrRecordNotFound so it can only be redeemed once.
func (r *passwordResetRepository) Consume(ctx context.Context, id uuid.UUID, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&domain.PasswordResetToken{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", now)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

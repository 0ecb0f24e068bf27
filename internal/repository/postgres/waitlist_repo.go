package postgres

import (
	"context"

	"github.com/foodai/foodai-web/internal/domain"
	"gorm.io/gorm"
)

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) *waitlistRepository {
	return &waitlistRepository{db: db}
}

func (r *waitlistRepository) Probe(ctx context.Context) error {
	var emails []string
	return translate(r.db.WithContext(ctx).
		Model(&domain.WaitlistEntry{}).
		Limit(1).
		Pluck("email", &emails).Error)
}

func (r *waitlistRepository) Create(ctx context.Context, entry *domain.WaitlistEntry) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error)
}

const waitlistTableDDL = `
CREATE TABLE IF NOT EXISTS waitlist (
    id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email      TEXT UNIQUE NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

var waitlistRLSStatements = []string{
	`ALTER TABLE waitlist ENABLE ROW LEVEL SECURITY`,
	`DROP POLICY IF EXISTS waitlist_anonymous_insert ON waitlist`,
	`CREATE POLICY waitlist_anonymous_insert ON waitlist FOR INSERT WITH CHECK (true)`,
	`DROP POLICY IF EXISTS waitlist_authenticated_select ON waitlist`,
	`CREATE POLICY waitlist_authenticated_select ON waitlist FOR SELECT USING (current_setting('app.role', true) = 'authenticated')`,
}

type waitlistSchema struct {
	db *gorm.DB
}

func NewWaitlistSchema(db *gorm.DB) *waitlistSchema {
	return &waitlistSchema{db: db}
}

// CreateTable creates the waitlist table if missing. With RLS the policies
// are installed in the same transaction so a failure leaves nothing behind.
func (s *waitlistSchema) CreateTable(ctx context.Context, withRLS bool) error {
	if !withRLS {
		return translate(s.db.WithContext(ctx).Exec(waitlistTableDDL).Error)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(waitlistTableDDL).Error; err != nil {
			return translate(err)
		}
		for _, stmt := range waitlistRLSStatements {
			if err := tx.Exec(stmt).Error; err != nil {
				return translate(err)
			}
		}
		return nil
	})
}

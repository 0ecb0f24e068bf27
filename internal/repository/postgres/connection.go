package postgres

import (
	"context"
	"fmt"

	"github.com/foodai/foodai-web/internal/repository"
	"github.com/foodai/foodai-web/internal/repository/postgres/migrations"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection opens a gorm handle. The schema is not touched here; call
// Migrate (or run cmd/migrate) to apply it.
func NewConnection(databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return RunMigrations(ctx, db, "up")
}

// RunMigrations runs a goose command (up, down, status or version) against
// the embedded migrations.
func RunMigrations(ctx context.Context, db *gorm.DB, command string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	switch command {
	case "up":
		err = goose.UpContext(ctx, sqlDB, ".")
	case "down":
		err = goose.DownContext(ctx, sqlDB, ".")
	case "status":
		err = goose.StatusContext(ctx, sqlDB, ".")
	case "version":
		err = goose.VersionContext(ctx, sqlDB, ".")
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}

// NewRepositories wires every repository to db. admin is the optional
// elevated connection used only by the waitlist bootstrap fallback.
func NewRepositories(db *gorm.DB, admin *gorm.DB) *repository.Repositories {
	repos := &repository.Repositories{
		User:          NewUserRepository(db),
		Session:       NewSessionRepository(db),
		Preferences:   NewPreferencesRepository(db),
		Waitlist:      NewWaitlistRepository(db),
		PasswordReset: NewPasswordResetRepository(db),
		Schema:        NewWaitlistSchema(db),
	}
	if admin != nil {
		repos.AdminSchema = NewWaitlistSchema(admin)
	}
	return repos
}

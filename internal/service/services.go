package service

import (
	"github.com/foodai/foodai-web/internal/config"
	"github.com/foodai/foodai-web/internal/repository"
)

type Services struct {
	Auth        *AuthService
	Preferences *PreferencesService
	Waitlist    *WaitlistService
}

func NewServices(repos *repository.Repositories, mailer Mailer, cfg *config.Config) *Services {
	return &Services{
		Auth:        NewAuthService(repos.User, repos.Session, repos.PasswordReset, mailer, cfg),
		Preferences: NewPreferencesService(repos.Preferences),
		Waitlist:    NewWaitlistService(repos.Waitlist, repos.Schema, repos.AdminSchema, cfg.WaitlistSchemaBootstrap),
	}
}

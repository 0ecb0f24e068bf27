package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/foodai/foodai-web/internal/config"
	"github.com/foodai/foodai-web/internal/domain"
	"github.com/foodai/foodai-web/internal/repository"
	"github.com/foodai/foodai-web/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

const minPasswordLength = 6

// Mailer delivers transactional mail.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string, ttl time.Duration) error
}

type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	resetRepo   repository.PasswordResetRepository
	mailer      Mailer
	cfg         *config.Config
	clock       Clock
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	resetRepo repository.PasswordResetRepository,
	mailer Mailer,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		resetRepo:   resetRepo,
		mailer:      mailer,
		cfg:         cfg,
		clock:       realClock{},
	}
}

// WithClock replaces the time source. Used by tests.
func (s *AuthService) WithClock(c Clock) *AuthService {
	s.clock = c
	return s
}

type SignUpInput struct {
	Email    string
	Password string
}

type SignInInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User   *domain.User
	Tokens session.Tokens
}

func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	email := domain.NormalizeEmail(input.Email)
	if len(input.Password) < minPasswordLength {
		return nil, domain.ErrPasswordTooWeak
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrEmailExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.startSession(ctx, user)
}

func (s *AuthService) SignIn(ctx context.Context, input SignInInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, domain.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

// Refresh exchanges a refresh token for a fresh token pair. The old refresh
// token is revoked, so each one can be used once. A token rotated less than
// RefreshReuseGrace ago still yields an access token (with no refresh token)
// while its successor is live; this keeps parallel requests from signing the
// user out. Unknown, expired, revoked and stale rotated tokens yield
// ErrInvalidSession; any other error means the backend could not be reached.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	hash, err := hashToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidSession
	}

	current, err := s.sessionRepo.GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	now := s.clock.Now()
	if !current.Active(now) {
		return s.resumeRotated(ctx, current, user, now)
	}

	next, tokens, err := s.issue(user, now)
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Rotate(ctx, current.ID, next, now); err != nil {
		if !errors.Is(err, repository.ErrSessionConflict) {
			return nil, fmt.Errorf("rotate session: %w", err)
		}
		// Lost the race to a concurrent refresh of the same token.
		current, err = s.sessionRepo.GetByID(ctx, current.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidSession
			}
			return nil, fmt.Errorf("lookup session: %w", err)
		}
		return s.resumeRotated(ctx, current, user, now)
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

// resumeRotated issues an access token for a recently rotated session whose
// successor is still active.
func (s *AuthService) resumeRotated(ctx context.Context, old *domain.UserSession, user *domain.User, now time.Time) (*AuthResult, error) {
	if !old.RotatedWithin(now, s.cfg.RefreshReuseGrace) {
		return nil, ErrInvalidSession
	}

	successor, err := s.sessionRepo.GetByID(ctx, *old.ReplacedBy)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if !successor.Active(now) {
		return nil, ErrInvalidSession
	}

	accessExp := now.Add(s.cfg.AccessTokenTTL)
	accessToken, err := s.generateAccessToken(user, now, accessExp)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	return &AuthResult{User: user, Tokens: session.Tokens{
		AccessToken:     accessToken,
		AccessExpiresAt: accessExp,
	}}, nil
}

// SignOut revokes the session behind refreshToken along with every session
// that replaced it through rotation. Unknown tokens are ignored.
func (s *AuthService) SignOut(ctx context.Context, refreshToken string) error {
	hash, err := hashToken(refreshToken)
	if err != nil {
		return nil
	}
	current, err := s.sessionRepo.GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("lookup session: %w", err)
	}

	now := s.clock.Now()
	for {
		if err := s.sessionRepo.Revoke(ctx, current.ID, now); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
		if current.ReplacedBy == nil {
			return nil
		}
		current, err = s.sessionRepo.GetByID(ctx, *current.ReplacedBy)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("lookup session: %w", err)
		}
	}
}

// ValidateAccessToken verifies an access token and returns its subject.
func (s *AuthService) ValidateAccessToken(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SessionSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// RequestPasswordReset mails a one-time reset link when the address belongs
// to an account. Unknown addresses succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	raw, hash, err := generateToken()
	if err != nil {
		return err
	}

	now := s.clock.Now()
	token := &domain.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(s.cfg.ResetTokenTTL),
		CreatedAt: now,
	}
	if err := s.resetRepo.Create(ctx, token); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link, err := s.resetLink(raw)
	if err != nil {
		return err
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link, s.cfg.ResetTokenTTL); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	slog.InfoContext(ctx, "password reset requested", "component", "service.Auth", "user_id", user.ID)
	return nil
}

// ResetPassword redeems a reset token, sets the new password and signs the
// user out everywhere.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return domain.ErrPasswordTooWeak
	}

	hash, err := hashToken(rawToken)
	if err != nil {
		return ErrInvalidResetToken
	}

	token, err := s.resetRepo.GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}

	now := s.clock.Now()
	if !token.Usable(now) {
		return ErrInvalidResetToken
	}

	if err := s.resetRepo.Consume(ctx, token.ID, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, token.UserID, string(hashedPassword)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return s.sessionRepo.RevokeByUserID(ctx, token.UserID, now)
}

func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	next, tokens, err := s.issue(user, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Create(ctx, next); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// issue mints an access token and a refresh session without persisting it.
func (s *AuthService) issue(user *domain.User, now time.Time) (*domain.UserSession, session.Tokens, error) {
	accessExp := now.Add(s.cfg.AccessTokenTTL)
	accessToken, err := s.generateAccessToken(user, now, accessExp)
	if err != nil {
		return nil, session.Tokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, hash, err := generateToken()
	if err != nil {
		return nil, session.Tokens{}, err
	}

	refreshExp := now.Add(s.cfg.RefreshTokenTTL)
	next := &domain.UserSession{
		ID:               uuid.New(),
		UserID:           user.ID,
		RefreshTokenHash: hash,
		ExpiresAt:        refreshExp,
		CreatedAt:        now,
	}

	return next, session.Tokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *AuthService) generateAccessToken(user *domain.User, now, exp time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.SessionSecret))
}

func (s *AuthService) resetLink(rawToken string) (string, error) {
	u, err := url.Parse(s.cfg.AppOrigin)
	if err != nil {
		return "", err
	}
	u.Path = "/auth/reset-password"
	q := u.Query()
	q.Set("token", rawToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

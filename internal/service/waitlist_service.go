package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/foodai/foodai-web/internal/domain"
	"github.com/foodai/foodai-web/internal/repository"
	"github.com/google/uuid"
)

var (
	// ErrWaitlistSetup means the waitlist table is missing and could not be created.
	ErrWaitlistSetup = errors.New("waitlist table is not set up")
	// ErrWaitlistUnavailable means the existence probe failed for another reason.
	ErrWaitlistUnavailable = errors.New("waitlist storage unavailable")
)

// InsertError carries the storage error that rejected a waitlist signup,
// including unique-constraint violations for repeated emails.
type InsertError struct {
	Err error
}

func (e *InsertError) Error() string {
	return "insert waitlist entry: " + e.Err.Error()
}

func (e *InsertError) Unwrap() error {
	return e.Err
}

type WaitlistService struct {
	waitlistRepo repository.WaitlistRepository
	schema       repository.WaitlistSchema
	adminSchema  repository.WaitlistSchema
	bootstrap    bool
	clock        Clock
}

// NewWaitlistService builds the service. When bootstrap is false a missing
// table fails the request instead of being created on the fly.
func NewWaitlistService(waitlistRepo repository.WaitlistRepository, schema, adminSchema repository.WaitlistSchema, bootstrap bool) *WaitlistService {
	return &WaitlistService{
		waitlistRepo: waitlistRepo,
		schema:       schema,
		adminSchema:  adminSchema,
		bootstrap:    bootstrap,
		clock:        realClock{},
	}
}

// Join adds email to the waitlist.
func (s *WaitlistService) Join(ctx context.Context, email string) (*domain.WaitlistEntry, error) {
	email = strings.TrimSpace(email)
	if !domain.IsValidEmail(email) {
		return nil, domain.ErrInvalidEmail
	}

	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}

	entry := &domain.WaitlistEntry{
		ID:        uuid.New(),
		Email:     email,
		CreatedAt: s.clock.Now(),
	}
	if err := s.waitlistRepo.Create(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "waitlist insert failed", "component", "service.Waitlist", "error", err)
		return nil, &InsertError{Err: err}
	}
	return entry, nil
}

// ensureTable probes the waitlist table and, when bootstrapping is enabled,
// creates it if the probe reports it missing: first with row-level security,
// then without it through the elevated connection if one is configured.
func (s *WaitlistService) ensureTable(ctx context.Context) error {
	err := s.waitlistRepo.Probe(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUndefinedTable) {
		return fmt.Errorf("%w: %w", ErrWaitlistUnavailable, err)
	}

	log := slog.With("component", "service.Waitlist")
	if !s.bootstrap {
		log.ErrorContext(ctx, "waitlist table missing; run migrations", "error", err)
		return ErrWaitlistSetup
	}

	log.WarnContext(ctx, "waitlist table does not exist, attempting to create it")
	err = s.schema.CreateTable(ctx, true)
	if err == nil {
		return nil
	}
	log.ErrorContext(ctx, "create waitlist table with row level security failed", "error", err)

	fallback := s.schema
	if s.adminSchema != nil {
		fallback = s.adminSchema
	}
	if err := fallback.CreateTable(ctx, false); err != nil {
		log.ErrorContext(ctx, "simple waitlist table creation failed", "error", err)
		return ErrWaitlistSetup
	}
	return nil
}

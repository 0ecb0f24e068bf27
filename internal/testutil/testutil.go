package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/foodai/foodai-web/internal/api"
	"github.com/foodai/foodai-web/internal/config"
	"github.com/foodai/foodai-web/internal/domain"
	"github.com/foodai/foodai-web/internal/repository"
	repoPostgres "github.com/foodai/foodai-web/internal/repository/postgres"
	"github.com/foodai/foodai-web/internal/service"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and applies the migrations
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_foodai"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := repoPostgres.NewConnection(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := repoPostgres.Migrate(ctx, db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"password_reset_tokens",
		"user_preferences",
		"user_sessions",
		"users",
		"waitlist",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// CountWaitlist counts waitlist rows, or only those for email when it is set.
func (tdb *TestDB) CountWaitlist(t *testing.T, email string) int64 {
	t.Helper()

	var n int64
	q := tdb.DB.Model(&domain.WaitlistEntry{})
	if email != "" {
		q = q.Where("email = ?", email)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count waitlist: %v", err)
	}
	return n
}

// CountActiveSessions counts unrevoked, unexpired refresh sessions of userID.
func (tdb *TestDB) CountActiveSessions(t *testing.T, userID uuid.UUID) int64 {
	t.Helper()

	var n int64
	err := tdb.DB.Model(&domain.UserSession{}).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > NOW()", userID).
		Count(&n).Error
	if err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	return n
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:            "0", // Random port
		Environment:     "test",
		AppOrigin:       "http://localhost:3000",
		DatabaseURL:     "set-by-testcontainers",
		SessionSecret:   "test-session-secret-for-testing-only",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		ResetTokenTTL:   30 * time.Minute,

		RefreshReuseGrace: 30 * time.Second,
		// High enough that table tests sharing one client address never trip it.
		WaitlistRateLimit: 1000,
	}
}

// SentMail is one message captured by RecordingMailer.
type SentMail struct {
	To   string
	Link string
	TTL  time.Duration
}

// RecordingMailer keeps reset mails in memory instead of sending them.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []SentMail
}

func (m *RecordingMailer) SendPasswordReset(_ context.Context, to, link string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMail{To: to, Link: link, TTL: ttl})
	return nil
}

// Sent returns a copy of the captured messages.
func (m *RecordingMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMail(nil), m.sent...)
}

// Reset forgets every captured message.
func (m *RecordingMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Mailer   *RecordingMailer
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return NewTestServerWithConfig(t, TestConfig())
}

// NewTestServerWithConfig is NewTestServer with a caller-supplied config.
func NewTestServerWithConfig(t *testing.T, cfg *config.Config) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg.DatabaseURL = testDB.DSN

	repos := repoPostgres.NewRepositories(testDB.DB, nil)
	mailer := &RecordingMailer{}

	services := service.NewServices(repos, mailer, cfg)
	router := api.NewRouter(services, cfg)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Mailer:   mailer,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// URL returns the full URL for a path on the test server
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}

// APIURL returns the full URL for a path under /api
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api%s", ts.Server.URL, path)
}

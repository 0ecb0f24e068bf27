package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foodai/foodai-web/internal/api"
	"github.com/foodai/foodai-web/internal/config"
	"github.com/foodai/foodai-web/internal/logging"
	"github.com/foodai/foodai-web/internal/mail"
	"github.com/foodai/foodai-web/internal/repository/postgres"
	"github.com/foodai/foodai-web/internal/service"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Init(os.Getenv("ENVIRONMENT"))
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.Init(cfg.Environment)

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL, logging.GormLevel(cfg.Environment))
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if cfg.MigrateOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := postgres.Migrate(ctx, db)
		cancel()
		if err != nil {
			logger.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	// The elevated connection only backs the waitlist bootstrap fallback.
	var admin *gorm.DB
	if cfg.WaitlistSchemaBootstrap && cfg.ServiceDatabaseURL != "" {
		admin, err = postgres.NewConnection(cfg.ServiceDatabaseURL, logging.GormLevel(cfg.Environment))
		if err != nil {
			logger.Error("failed to connect with service credentials", "error", err)
			os.Exit(1)
		}
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db, admin)

	var mailer service.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	} else {
		logger.Warn("SMTP_HOST not set, password reset links will be logged")
		mailer = mail.NewLogSender(logger)
	}

	// Initialize services
	services := service.NewServices(repos, mailer, cfg)

	// Initialize router
	router := api.NewRouter(services, cfg)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

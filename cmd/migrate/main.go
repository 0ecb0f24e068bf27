// Command migrate applies the database schema. Run it once per deploy
// before starting the server.
//
//	migrate [up|down|status|version]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/foodai/foodai-web/internal/logging"
	"github.com/foodai/foodai-web/internal/repository/postgres"
	"gorm.io/gorm/logger"
)

func main() {
	dsn := flag.String("database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: migrate [-database-url URL] [up|down|status|version]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log := logging.Init(os.Getenv("ENVIRONMENT"))

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}
	if *dsn == "" {
		log.Error("DATABASE_URL environment variable is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewConnection(*dsn, logger.Warn)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrations(ctx, db, command); err != nil {
		log.Error("migration failed", "command", command, "error", err)
		os.Exit(1)
	}
	slog.Info("migration finished", "command", command)
}

package postgres

import (
	"errors"
	"fmt"

	"github.com/foodai/foodai-web/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUndefinedTable  = "42P01"
	codeUniqueViolation = "23505"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// translate tags well-known Postgres failures with repository sentinels while
// keeping the driver error in the chain for its message.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if pgCode(err) == codeUndefinedTable {
		return fmt.Errorf("%w: %w", repository.ErrUndefinedTable, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

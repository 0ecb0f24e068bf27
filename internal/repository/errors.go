package repository

import "errors"

// ErrSessionConflict is returned when a refresh token was rotated or revoked
// between lookup and rotation.
var ErrSessionConflict = errors.New("session already rotated")

// ErrUndefinedTable marks a query that failed because its table does not
// exist (Postgres SQLSTATE 42P01).
var ErrUndefinedTable = errors.New("undefined table")

// ErrDuplicate marks an insert rejected by a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

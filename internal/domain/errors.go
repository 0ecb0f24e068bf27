package domain

import "errors"

// Preference validation errors
var (
	ErrInvalidDietGoal = errors.New("invalid diet goal")
	ErrInvalidAllergy  = errors.New("invalid allergy")
)

// Account validation errors
var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrPasswordTooWeak = errors.New("password must be at least 6 characters")
)

package domain

import "regexp"

// emailPattern matches local@domain.tld with no whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether email has the basic local@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

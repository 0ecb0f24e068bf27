package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"
)

// Clock is an injectable time source so token expiry can be tested.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// generateToken returns a random 32-byte token (base64url) and its sha256 hash.
func generateToken() (raw string, hash []byte, err error) {
	b := make([]byte, 32)
	if _, err = rand.Read(b); err != nil {
		return "", nil, err
	}
	raw = base64.RawURLEncoding.EncodeToString(b)
	h := sha256.Sum256([]byte(raw))
	return raw, h[:], nil
}

// hashToken hashes a raw token after checking it is base64url.
func hashToken(raw string) ([]byte, error) {
	if raw == "" {
		return nil, errors.New("empty token")
	}
	if _, err := base64.RawURLEncoding.DecodeString(raw); err != nil {
		return nil, err
	}
	sum := sha256.Sum256([]byte(raw))
	return sum[:], nil
}

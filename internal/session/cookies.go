// Package session moves auth tokens between HTTP messages and cookies.
package session

import (
	"net/http"
	"time"
)

const (
	AccessCookieName  = "foodai-access-token"
	RefreshCookieName = "foodai-refresh-token"
)

// Tokens is the pair carried by a browser session.
type Tokens struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// CookieStore reads session cookies from requests and writes them to
// responses. The zero value writes host-only, non-secure cookies.
type CookieStore struct {
	Domain string
	Secure bool
}

func NewCookieStore(domain string, secure bool) *CookieStore {
	return &CookieStore{Domain: domain, Secure: secure}
}

// Get returns the value of the named cookie, or "" when absent.
func (s *CookieStore) Get(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// Set writes a session cookie expiring at expires.
func (s *CookieStore) Set(w http.ResponseWriter, name, value string, expires time.Time) {
	http.SetCookie(w, s.cookie(name, value, expires))
}

// Remove instructs the browser to drop the named cookie.
func (s *CookieStore) Remove(w http.ResponseWriter, name string) {
	c := s.cookie(name, "", time.Unix(0, 0))
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// Read returns the access and refresh token values found on r.
func (s *CookieStore) Read(r *http.Request) (access, refresh string) {
	return s.Get(r, AccessCookieName), s.Get(r, RefreshCookieName)
}

// Write stores the tokens on w. An empty refresh token leaves the browser's
// refresh cookie as it is.
func (s *CookieStore) Write(w http.ResponseWriter, t Tokens) {
	s.Set(w, AccessCookieName, t.AccessToken, t.AccessExpiresAt)
	if t.RefreshToken != "" {
		s.Set(w, RefreshCookieName, t.RefreshToken, t.RefreshExpiresAt)
	}
}

// Clear removes both session cookies.
func (s *CookieStore) Clear(w http.ResponseWriter) {
	s.Remove(w, AccessCookieName)
	s.Remove(w, RefreshCookieName)
}

func (s *CookieStore) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.Domain,
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.Secure,
	}
}

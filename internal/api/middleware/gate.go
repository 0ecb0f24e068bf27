package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/foodai/foodai-web/internal/service"
	"github.com/foodai/foodai-web/internal/session"
	"github.com/google/uuid"
)

// GatedPrefixes lists the path prefixes the gate runs on. Everything else is
// served without touching the session.
var GatedPrefixes = []string{
	"/dashboard",
	"/api",
	"/auth",
	"/sign-in",
	"/sign-up",
	"/forgot-password",
	"/success",
}

const protectedPrefix = "/dashboard"

// SessionAuthenticator is the part of the auth service the gate needs.
type SessionAuthenticator interface {
	ValidateAccessToken(token string) (uuid.UUID, error)
	Refresh(ctx context.Context, refreshToken string) (*service.AuthResult, error)
}

type Decision int

const (
	Continue Decision = iota
	Redirect
)

func (d Decision) String() string {
	switch d {
	case Continue:
		return "continue"
	case Redirect:
		return "redirect"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Result is what the gate decided for one request. UserID is uuid.Nil when
// the request carries no usable session.
type Result struct {
	Decision Decision
	Location string
	UserID   uuid.UUID
}

// Gate refreshes the browser session on every matched request and keeps
// anonymous visitors out of the dashboard.
type Gate struct {
	auth    SessionAuthenticator
	cookies *session.CookieStore
}

// NewGate returns nil when auth is nil; a nil gate passes every request through.
func NewGate(auth SessionAuthenticator, cookies *session.CookieStore) *Gate {
	if auth == nil {
		return nil
	}
	return &Gate{auth: auth, cookies: cookies}
}

// Matches reports whether path falls under one of GatedPrefixes.
func Matches(path string) bool {
	for _, p := range GatedPrefixes {
		if hasPathPrefix(path, p) {
			return true
		}
	}
	return false
}

// Evaluate resolves the session for r. Refreshed cookies are written to w. A
// rejected refresh token clears the cookies and is not an error; an error is
// returned only when the session backend itself failed.
func (g *Gate) Evaluate(w http.ResponseWriter, r *http.Request) (Result, error) {
	userID, err := g.identify(w, r)
	if err != nil {
		return Result{Decision: Continue}, err
	}

	if userID == uuid.Nil && hasPathPrefix(r.URL.Path, protectedPrefix) {
		return Result{Decision: Redirect, Location: SignInPath}, nil
	}
	return Result{Decision: Continue, UserID: userID}, nil
}

func (g *Gate) identify(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	access, refresh := g.cookies.Read(r)

	if access != "" {
		if userID, err := g.auth.ValidateAccessToken(access); err == nil {
			return userID, nil
		}
	}
	if refresh == "" {
		return uuid.Nil, nil
	}

	result, err := g.auth.Refresh(r.Context(), refresh)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSession) {
			g.cookies.Clear(w)
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}

	g.cookies.Write(w, result.Tokens)
	return result.User.ID, nil
}

// Middleware applies the gate to matched paths. When Evaluate fails the
// request continues without an identity.
func (g *Gate) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if g == nil {
			slog.Warn("session gate disabled: no authenticator configured", "component", "middleware.Gate")
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Matches(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			res, err := g.Evaluate(w, r)
			if err != nil {
				slog.ErrorContext(r.Context(), "session refresh failed, passing request through",
					"component", "middleware.Gate", "path", r.URL.Path, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if res.Decision == Redirect {
				http.Redirect(w, r, res.Location, http.StatusSeeOther)
				return
			}

			if res.UserID != uuid.Nil {
				r = r.WithContext(WithUserID(r.Context(), res.UserID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasPathPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

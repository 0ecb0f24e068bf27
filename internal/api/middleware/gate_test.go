package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foodai/foodai-web/internal/api/middleware"
	"github.com/foodai/foodai-web/internal/domain"
	"github.com/foodai/foodai-web/internal/service"
	"github.com/foodai/foodai-web/internal/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	validAccess  map[string]uuid.UUID
	refreshUser  uuid.UUID
	refreshErr   error
	refreshCalls int
}

func (f *fakeAuth) ValidateAccessToken(token string) (uuid.UUID, error) {
	if id, ok := f.validAccess[token]; ok {
		return id, nil
	}
	return uuid.Nil, service.ErrInvalidToken
}

func (f *fakeAuth) Refresh(_ context.Context, _ string) (*service.AuthResult, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	exp := time.Now().Add(time.Hour)
	return &service.AuthResult{
		User: &domain.User{ID: f.refreshUser},
		Tokens: session.Tokens{
			AccessToken:      "new-access",
			AccessExpiresAt:  exp,
			RefreshToken:     "new-refresh",
			RefreshExpiresAt: exp,
		},
	}, nil
}

// capture records what reached the wrapped handler.
type capture struct {
	called bool
	userID uuid.UUID
}

func (c *capture) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.userID, _ = middleware.GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func request(path string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestGate_Middleware(t *testing.T) {
	userID := uuid.New()
	access := &http.Cookie{Name: session.AccessCookieName, Value: "good-access"}
	staleAccess := &http.Cookie{Name: session.AccessCookieName, Value: "expired"}
	refresh := &http.Cookie{Name: session.RefreshCookieName, Value: "refresh"}

	tests := []struct {
		name            string
		path            string
		cookies         []*http.Cookie
		refreshErr      error
		wantStatus      int
		wantLocation    string
		wantCalled      bool
		wantUser        uuid.UUID
		wantRefreshes   int
		wantNewCookies  bool
		wantClearedCook bool
	}{
		{
			name:         "dashboard without session redirects",
			path:         "/dashboard",
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/sign-in",
		},
		{
			name:         "nested dashboard path without session redirects",
			path:         "/dashboard/settings",
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/sign-in",
		},
		{
			name:       "dashboard with valid access token passes",
			path:       "/dashboard",
			cookies:    []*http.Cookie{access},
			wantStatus: http.StatusOK,
			wantCalled: true,
			wantUser:   userID,
		},
		{
			name:           "expired access token is refreshed",
			path:           "/dashboard",
			cookies:        []*http.Cookie{staleAccess, refresh},
			wantStatus:     http.StatusOK,
			wantCalled:     true,
			wantUser:       userID,
			wantRefreshes:  1,
			wantNewCookies: true,
		},
		{
			name:            "revoked refresh token clears cookies and redirects",
			path:            "/dashboard",
			cookies:         []*http.Cookie{refresh},
			refreshErr:      service.ErrInvalidSession,
			wantStatus:      http.StatusSeeOther,
			wantLocation:    "/sign-in",
			wantRefreshes:   1,
			wantClearedCook: true,
		},
		{
			name:            "revoked refresh token on api path passes anonymously",
			path:            "/api/save-preferences",
			cookies:         []*http.Cookie{refresh},
			refreshErr:      service.ErrInvalidSession,
			wantStatus:      http.StatusOK,
			wantCalled:      true,
			wantRefreshes:   1,
			wantClearedCook: true,
		},
		{
			name:          "backend failure fails open",
			path:          "/dashboard",
			cookies:       []*http.Cookie{refresh},
			refreshErr:    errors.New("connection refused"),
			wantStatus:    http.StatusOK,
			wantCalled:    true,
			wantRefreshes: 1,
		},
		{
			name:       "unmatched path bypasses the gate",
			path:       "/",
			cookies:    []*http.Cookie{refresh},
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "lookalike prefix is not gated",
			path:       "/dashboards",
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "sign-in page is reachable anonymously",
			path:       "/sign-in",
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuth{
				validAccess: map[string]uuid.UUID{"good-access": userID},
				refreshUser: userID,
				refreshErr:  tt.refreshErr,
			}
			gate := middleware.NewGate(auth, session.NewCookieStore("", false))
			c := &capture{}

			rec := httptest.NewRecorder()
			gate.Middleware()(c.handler()).ServeHTTP(rec, request(tt.path, tt.cookies...))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, c.called)
			assert.Equal(t, tt.wantUser, c.userID)
			assert.Equal(t, tt.wantRefreshes, auth.refreshCalls)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}

			accessCookie := cookieByName(rec, session.AccessCookieName)
			switch {
			case tt.wantNewCookies:
				require.NotNil(t, accessCookie)
				assert.Equal(t, "new-access", accessCookie.Value)
				refreshCookie := cookieByName(rec, session.RefreshCookieName)
				require.NotNil(t, refreshCookie)
				assert.Equal(t, "new-refresh", refreshCookie.Value)
			case tt.wantClearedCook:
				require.NotNil(t, accessCookie)
				assert.Empty(t, accessCookie.Value)
				assert.Equal(t, -1, accessCookie.MaxAge)
			default:
				assert.Nil(t, accessCookie)
			}
		})
	}
}

func TestGate_Evaluate(t *testing.T) {
	auth := &fakeAuth{refreshErr: errors.New("db down")}
	gate := middleware.NewGate(auth, session.NewCookieStore("", false))

	rec := httptest.NewRecorder()
	res, err := gate.Evaluate(rec, request("/dashboard", &http.Cookie{Name: session.RefreshCookieName, Value: "r"}))
	require.Error(t, err)
	assert.Equal(t, middleware.Continue, res.Decision)

	res, err = gate.Evaluate(httptest.NewRecorder(), request("/dashboard"))
	require.NoError(t, err)
	assert.Equal(t, middleware.Redirect, res.Decision)
	assert.Equal(t, "/sign-in", res.Location)
	assert.Equal(t, "redirect", res.Decision.String())
}

func TestGate_NilPassesThrough(t *testing.T) {
	gate := middleware.NewGate(nil, session.NewCookieStore("", false))
	require.Nil(t, gate)

	c := &capture{}
	rec := httptest.NewRecorder()
	gate.Middleware()(c.handler()).ServeHTTP(rec, request("/dashboard"))

	assert.True(t, c.called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSession(t *testing.T) {
	c := &capture{}
	h := middleware.RequireSession(c.handler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request("/dashboard"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/sign-in", rec.Header().Get("Location"))
	assert.False(t, c.called)

	userID := uuid.New()
	req := request("/dashboard")
	req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, c.userID)
}

func TestMatches(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/dashboard", true},
		{"/dashboard/x", true},
		{"/api/waitlist", true},
		{"/auth/me", true},
		{"/sign-in", true},
		{"/sign-up", true},
		{"/forgot-password", true},
		{"/success", true},
		{"/", false},
		{"/health", false},
		{"/apiary", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, middleware.Matches(tt.path))
		})
	}
}

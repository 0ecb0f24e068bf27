// Package client drives the FoodAI HTTP API the way the browser does: the
// session lives in cookies that persist across calls.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client with its own cookie jar. Redirects are not
// followed so callers can see where the server sends them.
func NewAPIClient(baseURL string) *APIClient {
	jar, _ := cookiejar.New(nil) // only fails on a non-nil options error
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Response types matching backend

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuthResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

type Preferences struct {
	DietGoals         []string `json:"dietGoals"`
	Allergies         []string `json:"allergies"`
	CustomPreferences string   `json:"customPreferences"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type TagOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type Dashboard struct {
	User            User        `json:"user"`
	Preferences     Preferences `json:"preferences"`
	DietGoalOptions []TagOption `json:"dietGoalOptions"`
	AllergyOptions  []TagOption `json:"allergyOptions"`
}

// ErrSignedOut is returned by Dashboard when the server redirects to sign-in.
var ErrSignedOut = &APIError{StatusCode: http.StatusSeeOther, Message: "not signed in"}

func (c *APIClient) SignUp(ctx context.Context, email, password string) (*User, error) {
	var result AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/sign-up", body, &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

func (c *APIClient) SignIn(ctx context.Context, email, password string) (*User, error) {
	var result AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/sign-in", body, &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

func (c *APIClient) SignOut(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/sign-out", nil, nil)
}

func (c *APIClient) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *APIClient) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	var result MessageResponse
	if err := c.do(ctx, http.MethodPost, "/forgot-password", map[string]string{"email": email}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) ResetPassword(ctx context.Context, token, password string) error {
	body := map[string]string{"token": token, "password": password}
	return c.do(ctx, http.MethodPost, "/auth/reset-password", body, nil)
}

func (c *APIClient) GetPreferences(ctx context.Context) (*Preferences, error) {
	var prefs Preferences
	if err := c.do(ctx, http.MethodGet, "/api/save-preferences", nil, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (c *APIClient) SavePreferences(ctx context.Context, prefs Preferences) (*MessageResponse, error) {
	var result MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/save-preferences", prefs, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) JoinWaitlist(ctx context.Context, email string) (string, error) {
	var result struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/waitlist", map[string]string{"email": email}, &result); err != nil {
		return "", err
	}
	return result.Message, nil
}

func (c *APIClient) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	if err := c.do(ctx, http.MethodGet, "/dashboard", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Health reports whether the server answers its health check.
func (c *APIClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusSeeOther || resp.StatusCode == http.StatusFound {
		return ErrSignedOut
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &body); err == nil {
		msg = body.Error
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/foodai/foodai-web/internal/api/middleware"
	"github.com/foodai/foodai-web/internal/domain"
	"github.com/foodai/foodai-web/internal/service"
	"github.com/foodai/foodai-web/internal/session"
	"github.com/foodai/foodai-web/internal/validate"
)

type AuthHandler struct {
	authService *service.AuthService
	cookies     *session.CookieStore
	validator   *validate.Validator
}

func NewAuthHandler(authService *service.AuthService, cookies *session.CookieStore, validator *validate.Validator) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies, validator: validator}
}

type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,simpleemail"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuthResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "A valid email and password are required")
		return
	}

	result, err := h.authService.SignUp(r.Context(), service.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			writeError(w, http.StatusConflict, "Email already registered")
		case errors.Is(err, domain.ErrPasswordTooWeak):
			writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		default:
			slog.ErrorContext(r.Context(), "sign up failed", "component", "handlers.SignUp", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.cookies.Write(w, result.Tokens)
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, User: toUserResponse(result.User)})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := h.authService.SignIn(r.Context(), service.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		slog.ErrorContext(r.Context(), "sign in failed", "component", "handlers.SignIn", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.cookies.Write(w, result.Tokens)
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, User: toUserResponse(result.User)})
}

// SignOut revokes the refresh session and clears the cookies. It succeeds
// even when no session is present.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	_, refresh := h.cookies.Read(r)
	if refresh != "" {
		if err := h.authService.SignOut(r.Context(), refresh); err != nil {
			slog.ErrorContext(r.Context(), "sign out failed", "component", "handlers.SignOut", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	h.cookies.Clear(w)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		slog.ErrorContext(r.Context(), "load user failed", "component", "handlers.Me", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// ForgotPassword always answers 200 so the response does not reveal which
// addresses have accounts.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		slog.ErrorContext(r.Context(), "password reset request failed", "component", "handlers.ForgotPassword", "error", err)
	}

	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: "If an account exists for that email, a reset link has been sent.",
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Token and password are required")
		return
	}

	err := h.authService.ResetPassword(r.Context(), req.Token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetToken):
			writeError(w, http.StatusBadRequest, "Reset link is invalid or has expired")
		case errors.Is(err, domain.ErrPasswordTooWeak):
			writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		default:
			slog.ErrorContext(r.Context(), "password reset failed", "component", "handlers.ResetPassword", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.cookies.Clear(w)
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Password updated"})
}

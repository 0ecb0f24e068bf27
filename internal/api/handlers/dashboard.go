package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/foodai/foodai-web/internal/api/middleware"
	"github.com/foodai/foodai-web/internal/service"
)

type DashboardHandler struct {
	authService  *service.AuthService
	prefsService *service.PreferencesService
}

func NewDashboardHandler(authService *service.AuthService, prefsService *service.PreferencesService) *DashboardHandler {
	return &DashboardHandler{authService: authService, prefsService: prefsService}
}

type DashboardResponse struct {
	User        UserResponse        `json:"user"`
	Preferences PreferencesResponse `json:"preferences"`
	DietGoals   []TagOption         `json:"dietGoalOptions"`
	Allergies   []TagOption         `json:"allergyOptions"`
}

// Show returns what the dashboard renders: the account, saved preferences
// and the tag options the preferences form offers. Mount it behind
// middleware.RequireSession.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Redirect(w, r, middleware.SignInPath, http.StatusSeeOther)
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			http.Redirect(w, r, middleware.SignInPath, http.StatusSeeOther)
			return
		}
		slog.ErrorContext(r.Context(), "load user failed", "component", "handlers.Dashboard", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	prefs, err := h.prefsService.Get(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "load preferences failed", "component", "handlers.Dashboard", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, DashboardResponse{
		User: toUserResponse(user),
		Preferences: PreferencesResponse{
			DietGoals:         prefs.DietGoals,
			Allergies:         prefs.Allergies,
			CustomPreferences: prefs.CustomPreferences,
		},
		DietGoals: dietGoalOptions(),
		Allergies: allergyOptions(),
	})
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/foodai/foodai-web/internal/api/middleware"
	"github.com/foodai/foodai-web/internal/domain"
	"github.com/foodai/foodai-web/internal/service"
	"github.com/foodai/foodai-web/internal/validate"
)

type PreferencesHandler struct {
	prefsService *service.PreferencesService
	validator    *validate.Validator
}

func NewPreferencesHandler(prefsService *service.PreferencesService, validator *validate.Validator) *PreferencesHandler {
	return &PreferencesHandler{prefsService: prefsService, validator: validator}
}

type SavePreferencesRequest struct {
	DietGoals         []string `json:"dietGoals" validate:"dive,dietgoal"`
	Allergies         []string `json:"allergies" validate:"dive,allergy"`
	CustomPreferences string   `json:"customPreferences" validate:"max=2000"`
}

type PreferencesResponse struct {
	DietGoals         []string `json:"dietGoals"`
	Allergies         []string `json:"allergies"`
	CustomPreferences string   `json:"customPreferences"`
}

func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	prefs, err := h.prefsService.Get(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "load preferences failed", "component", "handlers.Preferences", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, PreferencesResponse{
		DietGoals:         prefs.DietGoals,
		Allergies:         prefs.Allergies,
		CustomPreferences: prefs.CustomPreferences,
	})
}

// Save replaces the caller's preferences. Repeating the same request leaves a
// single row holding the latest values.
func (h *PreferencesHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req SavePreferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		var verr *validate.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, invalidPreferencesMessage(verr))
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, err := h.prefsService.Save(r.Context(), userID, service.SavePreferencesInput{
		DietGoals:         req.DietGoals,
		Allergies:         req.Allergies,
		CustomPreferences: req.CustomPreferences,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidDietGoal), errors.Is(err, domain.ErrInvalidAllergy):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "save preferences failed", "component", "handlers.Preferences", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Preferences saved successfully"})
}

func invalidPreferencesMessage(verr *validate.ValidationError) string {
	switch {
	case verr.Has("dietGoals"):
		return domain.ErrInvalidDietGoal.Error()
	case verr.Has("allergies"):
		return domain.ErrInvalidAllergy.Error()
	case verr.Has("customPreferences"):
		return "Custom preferences are too long"
	default:
		return "Invalid request body"
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/foodai/foodai-web/internal/domain"
	"github.com/foodai/foodai-web/internal/service"
	"github.com/foodai/foodai-web/internal/validate"
)

type WaitlistHandler struct {
	waitlistService *service.WaitlistService
	validator       *validate.Validator
}

func NewWaitlistHandler(waitlistService *service.WaitlistService, validator *validate.Validator) *WaitlistHandler {
	return &WaitlistHandler{waitlistService: waitlistService, validator: validator}
}

type JoinWaitlistRequest struct {
	Email string `json:"email" validate:"simpleemail"`
}

type JoinWaitlistResponse struct {
	Message string `json:"message"`
}

func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req JoinWaitlistRequest
	if err := decodeJSON(r, &req); err != nil {
		// A body that is not JSON has always been reported as a server error.
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	_, err := h.waitlistService.Join(r.Context(), req.Email)
	if err != nil {
		var insertErr *service.InsertError
		switch {
		case errors.Is(err, domain.ErrInvalidEmail):
			writeError(w, http.StatusBadRequest, "Invalid email address")
		case errors.Is(err, service.ErrWaitlistSetup):
			writeError(w, http.StatusInternalServerError, "Database setup error. Please contact support.")
		case errors.As(err, &insertErr):
			writeError(w, http.StatusInternalServerError, "Failed to join waitlist: "+insertErr.Err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Database operation failed. Please try again later.")
		}
		return
	}

	writeJSON(w, http.StatusOK, JoinWaitlistResponse{Message: "Successfully joined waitlist"})
}

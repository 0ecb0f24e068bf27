package handlers

import (
	"net/http"

	"github.com/foodai/foodai-web/internal/domain"
)

// Landing payloads for the routes the browser is redirected to. Rendering is
// left to the front end; these describe what each page offers.

type PageResponse struct {
	Page    string   `json:"page"`
	Title   string   `json:"title"`
	Actions []string `json:"actions,omitempty"`
}

type TagOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func dietGoalOptions() []TagOption {
	out := make([]TagOption, 0, len(domain.AllDietGoals))
	for _, g := range domain.AllDietGoals {
		out = append(out, TagOption{ID: string(g), Label: g.DisplayName()})
	}
	return out
}

func allergyOptions() []TagOption {
	out := make([]TagOption, 0, len(domain.AllAllergies))
	for _, a := range domain.AllAllergies {
		out = append(out, TagOption{ID: string(a), Label: a.DisplayName()})
	}
	return out
}

func page(p PageResponse) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, p)
	}
}

var (
	Home = page(PageResponse{
		Page:    "home",
		Title:   "Know what's in your food",
		Actions: []string{"POST /api/waitlist"},
	})
	SignInPage = page(PageResponse{
		Page:    "sign-in",
		Title:   "Sign in to FoodAI",
		Actions: []string{"POST /sign-in", "POST /forgot-password"},
	})
	SignUpPage = page(PageResponse{
		Page:    "sign-up",
		Title:   "Create your FoodAI account",
		Actions: []string{"POST /sign-up"},
	})
	ForgotPasswordPage = page(PageResponse{
		Page:    "forgot-password",
		Title:   "Reset your password",
		Actions: []string{"POST /forgot-password"},
	})
	SuccessPage = page(PageResponse{
		Page:    "success",
		Title:   "You're all set",
		Actions: []string{"GET /dashboard"},
	})
)

package api

import (
	"net/http"
	"time"

	"github.com/foodai/foodai-web/internal/api/handlers"
	"github.com/foodai/foodai-web/internal/api/middleware"
	"github.com/foodai/foodai-web/internal/config"
	"github.com/foodai/foodai-web/internal/service"
	"github.com/foodai/foodai-web/internal/session"
	"github.com/foodai/foodai-web/internal/validate"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins()))

	cookies := session.NewCookieStore(cfg.CookieDomain, cfg.SecureCookies())
	validator := validate.New()

	var gate *middleware.Gate
	if cfg.SessionSecret != "" {
		gate = middleware.NewGate(services.Auth, cookies)
	}
	r.Use(gate.Middleware())

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, cookies, validator)
	prefsHandler := handlers.NewPreferencesHandler(services.Preferences, validator)
	waitlistHandler := handlers.NewWaitlistHandler(services.Waitlist, validator)
	dashboardHandler := handlers.NewDashboardHandler(services.Auth, services.Preferences)

	r.Get("/", handlers.Home)

	// Account pages
	r.Get("/sign-in", handlers.SignInPage)
	r.Post("/sign-in", authHandler.SignIn)
	r.Get("/sign-up", handlers.SignUpPage)
	r.Post("/sign-up", authHandler.SignUp)
	r.Get("/forgot-password", handlers.ForgotPasswordPage)
	r.Post("/forgot-password", authHandler.ForgotPassword)
	r.Get("/success", handlers.SuccessPage)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/sign-out", authHandler.SignOut)
		r.Post("/reset-password", authHandler.ResetPassword)
		r.Get("/me", authHandler.Me)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/save-preferences", prefsHandler.Get)
		r.Post("/save-preferences", prefsHandler.Save)
		r.With(middleware.LimitByIP(cfg.WaitlistRateLimit, time.Minute)).Post("/waitlist", waitlistHandler.Join)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession)
		r.Get("/dashboard", dashboardHandler.Show)
	})

	return r
}

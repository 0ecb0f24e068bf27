package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// LimitByIP rejects requests with 429 once a client address has made limit
// requests within per. Counts are kept in process memory.
func LimitByIP(limit int, per time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, per,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(tooManyRequests),
	)
}

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]string{"error": "Too many requests. Please try again later."})
}

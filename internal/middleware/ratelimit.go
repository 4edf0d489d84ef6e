package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitMessage is the body sent with a 429.
const RateLimitMessage = "too many requests, please try again later"

// RateLimit allows limit requests per client IP in each window. Requests
// over the limit get 429 with a JSON error body. The key is the IP of
// RemoteAddr. It is the socket peer unless chi's RealIP ran before, which
// the server only installs when trust_proxy is set.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": RateLimitMessage})
		}),
	)
}

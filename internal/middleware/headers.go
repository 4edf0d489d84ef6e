package middleware

import "net/http"

// securityHeaders is the baseline sent on every response. Uploads are
// embedded by the SPA from other origins in development, hence the
// cross-origin resource policy.
var securityHeaders = map[string]string{
	"X-Content-Type-Options":       "nosniff",
	"X-Frame-Options":              "SAMEORIGIN",
	"Referrer-Policy":              "no-referrer",
	"Cross-Origin-Opener-Policy":   "same-origin",
	"Cross-Origin-Resource-Policy": "cross-origin",
	"X-DNS-Prefetch-Control":       "off",
	"Origin-Agent-Cluster":         "?1",
}

// SecurityHeaders sets the baseline security headers before the handler
// runs. A handler may still override any of them.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for k, v := range securityHeaders {
			h.Set(k, v)
		}
		next.ServeHTTP(w, r)
	})
}

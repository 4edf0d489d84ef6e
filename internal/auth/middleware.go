package auth

import (
	"encoding/json"
	"net/http"
)

// HeaderPublishPassword carries the publish secret on gated requests.
const HeaderPublishPassword = "X-Publish-Password"

// RequirePublishSecret guards write routes behind the publish secret.
//
// The secret travels in the X-Publish-Password header on every gated
// request; there is no session. A missing header and a wrong value get
// distinct 401 messages so the SPA can tell "never asked" from "mistyped".
//
// Mount it on a chi sub-router or a single route:
//
//	r.With(auth.RequirePublishSecret(gate)).Post("/", h.Create)
func RequirePublishSecret(gate *Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplied := r.Header.Get(HeaderPublishPassword)
			if supplied == "" {
				deny(w, http.StatusUnauthorized, "publish password required")
				return
			}

			ok, err := gate.Verify(r.Context(), supplied)
			if err != nil {
				gate.logger.Error("publish password check failed", "error", err)
				deny(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !ok {
				deny(w, http.StatusUnauthorized, "invalid publish password")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

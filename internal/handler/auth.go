package handler

import (
	"net/http"

	"github.com/RebotePadel/GameHome/internal/auth"
)

type verifyRequest struct {
	Password string `json:"password"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

// AuthHandler lets the SPA check a publish password before using it.
type AuthHandler struct {
	gate *auth.Gate
	rs   *Responder
}

func NewAuthHandler(gate *auth.Gate, rs *Responder) *AuthHandler {
	return &AuthHandler{gate: gate, rs: rs}
}

// HandleVerify serves POST /api/auth/verify. A wrong password is a normal
// 200 {"valid": false}, not an error.
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !h.rs.Decode(w, r, &req) {
		return
	}

	ok, err := h.gate.Verify(r.Context(), req.Password)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, verifyResponse{Valid: ok})
}

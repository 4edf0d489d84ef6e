package handler

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"` // seconds
}

// HealthHandler serves GET /api/health.
type HealthHandler struct {
	started time.Time
	now     func() time.Time
	rs      *Responder
}

// NewHealthHandler measures uptime from the moment it is created.
func NewHealthHandler(rs *Responder) *HealthHandler {
	return &HealthHandler{started: time.Now(), now: time.Now, rs: rs}
}

func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	h.rs.JSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: now.UTC(),
		Uptime:    now.Sub(h.started).Seconds(),
	})
}

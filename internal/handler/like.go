package handler

import (
	"net/http"

	"github.com/RebotePadel/GameHome/internal/service"
)

type createLikeRequest struct {
	MessageID string `json:"messageId" validate:"required"`
	PrenomID  string `json:"prenomId" validate:"required"`
}

// bulkLikeRequest has no validate tags: LikeService.Bulk checks it and
// words the errors the way the SPA expects.
type bulkLikeRequest struct {
	MessageIDs []string `json:"messageIds"`
	PrenomID   string   `json:"prenomId"`
}

type bulkLikeResponse struct {
	Results []service.BulkLikeResult `json:"results"`
}

// LikeHandler serves /api/likes.
type LikeHandler struct {
	svc *service.LikeService
	rs  *Responder
}

func NewLikeHandler(svc *service.LikeService, rs *Responder) *LikeHandler {
	return &LikeHandler{svc: svc, rs: rs}
}

// HandleCreate serves POST /api/likes.
func (h *LikeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createLikeRequest
	if !h.rs.Decode(w, r, &req) {
		return
	}

	like, err := h.svc.Create(r.Context(), req.MessageID, req.PrenomID)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, like)
}

// HandleDelete serves DELETE /api/likes/{messageId}/{prenomId}.
func (h *LikeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("messageId"), r.PathValue("prenomId")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// HandleBulk serves POST /api/likes/bulk.
func (h *LikeHandler) HandleBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkLikeRequest
	if !h.rs.Decode(w, r, &req) {
		return
	}

	results, err := h.svc.Bulk(r.Context(), req.MessageIDs, req.PrenomID)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, bulkLikeResponse{Results: results})
}

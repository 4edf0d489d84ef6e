package handler

import (
	"net/http"

	"github.com/RebotePadel/GameHome/internal/service"
)

type createCommentRequest struct {
	MessageID string `json:"messageId" validate:"required"`
	PrenomID  string `json:"prenomId" validate:"required"`
	Content   string `json:"content" validate:"min=1"`
}

// CommentHandler serves /api/comments.
type CommentHandler struct {
	svc *service.CommentService
	rs  *Responder
}

func NewCommentHandler(svc *service.CommentService, rs *Responder) *CommentHandler {
	return &CommentHandler{svc: svc, rs: rs}
}

// HandleList serves GET /api/comments/{messageId}.
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.List(r.Context(), r.PathValue("messageId"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, comments)
}

// HandleCreate serves POST /api/comments.
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if !h.rs.Decode(w, r, &req) {
		return
	}

	c, err := h.svc.Create(r.Context(), req.MessageID, req.PrenomID, req.Content)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, c)
}

// HandleDelete serves DELETE /api/comments/{messageId}/{commentId}.
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("messageId"), r.PathValue("commentId")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, SuccessResponse{Success: true})
}

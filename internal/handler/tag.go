package handler

import (
	"net/http"

	"github.com/RebotePadel/GameHome/internal/service"
)

type createTagRequest struct {
	Name  string `json:"name" validate:"min=2"`
	Color string `json:"color" validate:"hexrgb"`
}

type updateTagRequest struct {
	Name  *string `json:"name" validate:"omitnil,min=2"`
	Color *string `json:"color" validate:"omitnil,hexrgb"`
	Order *int    `json:"order" validate:"omitnil,gte=0"`
}

type reorderTagsRequest struct {
	TagIDs []string `json:"tagIds" validate:"required"`
}

// TagHandler serves /api/tags.
type TagHandler struct {
	svc *service.TagService
	rs  *Responder
}

func NewTagHandler(svc *service.TagService, rs *Responder) *TagHandler {
	return &TagHandler{svc: svc, rs: rs}
}

// HandleList serves GET /api/tags, sorted by order.
func (h *TagHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.List(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, tags)
}

func (h *TagHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	tag, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, tag)
}

func (h *TagHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if !h.rs.Decode(w, r, &req) {
		return
	}

	tag, err := h.svc.Create(r.Context(), req.Name, req.Color)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, tag)
}

// HandleUpdate serves PUT /api/tags/{id}. Absent fields are left unchanged.
func (h *TagHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateTagRequest
	if !h.rs.Decode(w, r, &req) {
		return
	}

	tag, err := h.svc.Update(r.Context(), r.PathValue("id"), service.UpdateTagInput{
		Name:  req.Name,
		Color: req.Color,
		Order: req.Order,
	})
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, tag)
}

// HandleDelete serves DELETE /api/tags/{id}. A tag still used by messages
// is refused with 400 and a reason.
func (h *TagHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// HandleReorder serves POST /api/tags/reorder.
func (h *TagHandler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderTagsRequest
	if !h.rs.Decode(w, r, &req) {
		return
	}

	tags, err := h.svc.Reorder(r.Context(), req.TagIDs)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, tags)
}

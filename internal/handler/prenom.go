package handler

import (
	"net/http"

	"github.com/RebotePadel/GameHome/internal/model"
	"github.com/RebotePadel/GameHome/internal/service"
)

type createPrenomRequest struct {
	Name string `json:"name" validate:"min=2"`
}

type updatePrenomRequest struct {
	Name   *string `json:"name" validate:"omitnil,min=2"`
	Active *bool   `json:"active"`
}

// deletePrenomResponse echoes the deactivated record.
type deletePrenomResponse struct {
	Success bool          `json:"success"`
	Prenom  *model.Prenom `json:"prenom"`
}

// PrenomHandler serves /api/prenoms.
type PrenomHandler struct {
	svc *service.PrenomService
	rs  *Responder
}

func NewPrenomHandler(svc *service.PrenomService, rs *Responder) *PrenomHandler {
	return &PrenomHandler{svc: svc, rs: rs}
}

func (h *PrenomHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	prenoms, err := h.svc.List(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, prenoms)
}

func (h *PrenomHandler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	prenoms, err := h.svc.ListActive(r.Context())
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, prenoms)
}

func (h *PrenomHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, p)
}

func (h *PrenomHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createPrenomRequest
	if !h.rs.Decode(w, r, &req) {
		return
	}

	p, err := h.svc.Create(r.Context(), req.Name)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusCreated, p)
}

func (h *PrenomHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updatePrenomRequest
	if !h.rs.Decode(w, r, &req) {
		return
	}

	p, err := h.svc.Update(r.Context(), r.PathValue("id"), service.UpdatePrenomInput{
		Name:   req.Name,
		Active: req.Active,
	})
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, p)
}

// HandleDelete serves DELETE /api/prenoms/{id}. It only deactivates.
func (h *PrenomHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Deactivate(r.Context(), r.PathValue("id"))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.JSON(w, http.StatusOK, deletePrenomResponse{Success: true, Prenom: p})
}

package forms

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lohit-Behera/canva/internal/api"
	"github.com/Lohit-Behera/canva/internal/auth"
	"github.com/Lohit-Behera/canva/internal/media"
	"github.com/Lohit-Behera/canva/internal/models"
)

// Handler holds form HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create stores a form from a multipart body with a thumbnail file.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := models.NewFormInput(r.FormValue("firstName"), r.FormValue("lastName"))
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	id, err := h.svc.Create(r.Context(), auth.UserID(r.Context()), in, media.FromContext(r.Context()))
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, id, "Form created successfully.")
}

// Get returns a single form with its owner's name, email and avatar.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Get(r.Context(), chi.URLParam(r, "formId"))
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, v, "Form found successfully.")
}

// List returns all forms for the current user.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, views, "Forms found successfully.")
}

// Delete removes one of the caller's forms.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "formId"), auth.UserID(r.Context())); err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, nil, "Form deleted successfully.")
}

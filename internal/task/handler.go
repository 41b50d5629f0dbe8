package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskflow/coordination/internal/api"
)

// Handler serves the minimal Task CRUD surface SPEC_FULL §6 adds so the
// four sidecar workers have a real producer to react to. Ownership is a
// bare X-User-ID header — issuing and verifying identity is an explicit
// spec.md Non-goal.
type Handler struct {
	service *Service
}

// NewHandler builds a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the Task API's CRUD endpoints under /api/v1/tasks.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Patch("/{id}", h.Update)
	r.Post("/{id}/complete", h.Complete)
	r.Delete("/{id}", h.Delete)
	return r
}

func ownerID(r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	return id, err == nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		api.Unauthorized(w, "missing or invalid X-User-ID")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid request body")
		return
	}

	t, err := h.service.Create(r.Context(), owner, req)
	if err != nil {
		api.BadRequest(w, err.Error())
		return
	}
	api.JSONResponse(w, http.StatusCreated, t)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		api.Unauthorized(w, "missing or invalid X-User-ID")
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}

	tasks, err := h.service.ListForOwner(r.Context(), owner, limit, offset)
	if err != nil {
		api.InternalError(w)
		return
	}
	api.JSONResponse(w, http.StatusOK, tasks)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.BadRequest(w, "invalid task id")
		return
	}

	t, err := h.service.GetByID(r.Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		api.NotFound(w, "task not found")
	case err != nil:
		api.InternalError(w)
	default:
		api.JSONResponse(w, http.StatusOK, t)
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.BadRequest(w, "invalid task id")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid request body")
		return
	}

	t, err := h.service.Update(r.Context(), id, req)
	switch {
	case errors.Is(err, ErrNotFound):
		api.NotFound(w, "task not found")
	case err != nil:
		api.BadRequest(w, err.Error())
	default:
		api.JSONResponse(w, http.StatusOK, t)
	}
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.BadRequest(w, "invalid task id")
		return
	}

	t, err := h.service.Complete(r.Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		api.NotFound(w, "task not found")
	case err != nil:
		api.InternalError(w)
	default:
		api.JSONResponse(w, http.StatusOK, t)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.BadRequest(w, "invalid task id")
		return
	}

	err = h.service.Delete(r.Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		api.NotFound(w, "task not found")
	case err != nil:
		api.InternalError(w)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

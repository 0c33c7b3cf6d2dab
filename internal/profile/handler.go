// AngelaMos | 2026
// handler.go

package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/classpanel/classpanel/internal/core"
	"github.com/classpanel/classpanel/internal/middleware"
	"github.com/classpanel/classpanel/internal/subscription"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/profiles", func(r chi.Router) {
		r.Use(authenticator)

		r.Route("/students", func(r chi.Router) {
			r.Post("/", h.CreateProfile)
			r.Get("/{userID}", h.GetProfile)
			r.Patch("/{userID}", h.UpdateProfile)
		})

		r.Route("/relations", func(r chi.Router) {
			r.Post("/", h.CreateRelation)
			r.Get("/parent/{parentID}", h.ListStudentsOfParent)
			r.Get("/student/{studentID}", h.ListParentsOfStudent)
			r.Delete("/{relationID}", h.DeleteRelation)
		})
	})
}

func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if !h.canManage(r, req.UserID) {
		core.Forbidden(w, "cannot manage another user's profile")
		return
	}

	resp, err := h.service.CreateProfile(r.Context(), req)
	if err != nil {
		h.writeProfileError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	resp, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "student profile")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if !h.canManage(r, userID) {
		core.Forbidden(w, "cannot manage another user's profile")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "student profile")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) CreateRelation(w http.ResponseWriter, r *http.Request) {
	var req CreateRelationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if !h.canManage(r, req.ParentID) {
		core.Forbidden(w, "cannot manage another user's relations")
		return
	}

	resp, err := h.service.CreateRelation(r.Context(), req)
	if err != nil {
		h.writeProfileError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) ListStudentsOfParent(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "parentID")

	if !h.canManage(r, parentID) {
		core.Forbidden(w, "cannot view another user's relations")
		return
	}

	resp, err := h.service.ListStudentsOfParent(r.Context(), parentID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ListParentsOfStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	if !h.canManage(r, studentID) {
		core.Forbidden(w, "cannot view another user's relations")
		return
	}

	resp, err := h.service.ListParentsOfStudent(r.Context(), studentID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) DeleteRelation(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		core.Forbidden(w, "only admins can remove relations")
		return
	}

	relationID := chi.URLParam(r, "relationID")

	if err := h.service.DeleteRelation(r.Context(), relationID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "relation")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) canManage(r *http.Request, targetID string) bool {
	return middleware.GetUserID(r.Context()) == targetID || isAdmin(r)
}

func isAdmin(r *http.Request) bool {
	role := middleware.GetUserRole(r.Context())
	return role == subscription.RoleTenantAdmin ||
		role == subscription.RoleSuperAdmin
}

func (h *Handler) writeProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProfileExists):
		core.JSONError(w, core.DuplicateError("student profile"))
	case errors.Is(err, ErrRelationExists):
		core.JSONError(w, core.DuplicateError("relation"))
	case errors.Is(err, ErrNotStudent),
		errors.Is(err, ErrNotParent),
		errors.Is(err, ErrSelfRelation):
		core.BadRequest(w, err.Error())
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	default:
		core.InternalServerError(w, err)
	}
}

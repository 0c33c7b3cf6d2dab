// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

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
	authenticator, optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		// Registration is open; privileged roles still require a
		// super admin token, checked in the handler.
		r.With(optionalAuth).Post("/", h.Register)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.With(middleware.RequireTenantAdmin).Get("/", h.ListUsers)
			r.Get("/{userID}", h.GetUser)
			r.Patch("/{userID}", h.UpdateUser)
			r.Post("/{userID}/subscription-plan", h.CreatePlan)
			r.Get("/{userID}/subscription-plan", h.GetActivePlan)
		})
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if isPrivilegedRole(req.Role) && !middleware.IsSuperAdmin(r.Context()) {
		core.Forbidden(w, "privileged roles require super admin")
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			core.JSONError(w, core.DuplicateError("email"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if !h.canAccessUser(r, userID) {
		core.Forbidden(w, "cannot access another user's account")
		return
	}

	resp, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if !h.canAccessUser(r, userID) {
		core.Forbidden(w, "cannot modify another user's account")
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	// Only admins may flip activation.
	if req.IsActive != nil && !isAdmin(r) {
		core.Forbidden(w, "only admins can change activation state")
		return
	}

	resp, err := h.service.Update(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "page_size"),
		Search:   r.URL.Query().Get("search"),
		TenantID: r.URL.Query().Get("tenant_id"),
		Role:     r.URL.Query().Get("role"),
	}

	// Tenant admins only see their own tenant.
	if middleware.GetUserRole(r.Context()) == subscription.RoleTenantAdmin {
		params.TenantID = middleware.GetTenantID(r.Context())
	}

	resp, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if !h.canAccessUser(r, userID) {
		core.Forbidden(w, "cannot manage another user's plan")
		return
	}

	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.CreatePlan(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) GetActivePlan(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if !h.canAccessUser(r, userID) {
		core.Forbidden(w, "cannot view another user's plan")
		return
	}

	resp, err := h.service.GetActivePlan(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "subscription plan")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) canAccessUser(r *http.Request, targetID string) bool {
	return middleware.GetUserID(r.Context()) == targetID || isAdmin(r)
}

func isAdmin(r *http.Request) bool {
	role := middleware.GetUserRole(r.Context())
	return role == subscription.RoleTenantAdmin ||
		role == subscription.RoleSuperAdmin
}

func isPrivilegedRole(role subscription.RoleType) bool {
	return role == subscription.RoleTenantAdmin ||
		role == subscription.RoleSuperAdmin
}

func queryInt(r *http.Request, key string) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

// AngelaMos | 2026
// handler.go

package tenant

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/classpanel/classpanel/internal/core"
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
	authenticator, superAdminOnly func(http.Handler) http.Handler,
) {
	r.Route("/tenants", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/{tenantID}", h.GetTenant)
		r.Get("/{tenantID}/subscription-plans", h.ListPlans)

		r.Group(func(r chi.Router) {
			r.Use(superAdminOnly)
			r.Post("/", h.CreateTenant)
			r.Get("/", h.ListTenants)
			r.Patch("/{tenantID}", h.UpdateTenant)
			r.Post("/{tenantID}/subscription-plans", h.CreatePlan)
		})
	})
}

func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	tenant, err := h.service.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrTaxNumberExists) {
			core.JSONError(w, core.DuplicateError("tax number"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToTenantResponse(tenant))
}

func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	tenant, err := h.service.GetByID(r.Context(), tenantID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "tenant")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToTenantResponse(tenant))
}

func (h *Handler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var req UpdateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	tenant, err := h.service.Update(r.Context(), tenantID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "tenant")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToTenantResponse(tenant))
}

func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	params := ListTenantsParams{
		Search: r.URL.Query().Get("search"),
	}
	params.Page = queryInt(r, "page")
	params.PageSize = queryInt(r, "page_size")

	tenants, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	responses := make([]TenantResponse, 0, len(tenants))
	for _, t := range tenants {
		responses = append(responses, ToTenantResponse(&t))
	}

	core.OK(w, TenantListResponse{Tenants: responses, Total: total})
}

func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	plan, err := h.service.CreatePlan(r.Context(), tenantID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "tenant")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToPlanResponse(plan))
}

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	plans, err := h.service.ListPlans(r.Context(), tenantID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "tenant")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, PlanListResponse{Plans: ToPlanResponseList(plans)})
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

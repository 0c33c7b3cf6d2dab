// AngelaMos | 2026
// dto.go

package tenant

import (
	"time"

	"github.com/classpanel/classpanel/internal/subscription"
)

type CreateTenantRequest struct {
	Name      string  `json:"name"       validate:"required,min=1,max=255"`
	TaxNumber *string `json:"tax_number" validate:"omitempty,len=10,numeric"`
	MaxUsers  *int    `json:"max_users"  validate:"omitempty,min=1"`
	City      *string `json:"city"       validate:"omitempty,max=255"`
	District  *string `json:"district"   validate:"omitempty,max=255"`
	Address   *string `json:"address"    validate:"omitempty,max=1000"`
}

type UpdateTenantRequest struct {
	Name     *string `json:"name,omitempty"      validate:"omitempty,min=1,max=255"`
	MaxUsers *int    `json:"max_users,omitempty" validate:"omitempty,min=1"`
	City     *string `json:"city,omitempty"      validate:"omitempty,max=255"`
	District *string `json:"district,omitempty"  validate:"omitempty,max=255"`
	Address  *string `json:"address,omitempty"   validate:"omitempty,max=1000"`
	IsActive *bool   `json:"is_active,omitempty"`
	IsPaid   *bool   `json:"is_paid,omitempty"`
}

type CreatePlanRequest struct {
	Level    subscription.Level `json:"level"     validate:"required,oneof=free gold premium pro"`
	Fee      *float64           `json:"fee"       validate:"omitempty,min=0"`
	IsActive *bool              `json:"is_active"`
	StartsAt *time.Time         `json:"starts_at"`
	EndsAt   *time.Time         `json:"ends_at"`
}

type TenantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxNumber *string   `json:"tax_number,omitempty"`
	MaxUsers  *int      `json:"max_users,omitempty"`
	City      *string   `json:"city,omitempty"`
	District  *string   `json:"district,omitempty"`
	Address   *string   `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	IsPaid    bool      `json:"is_paid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PlanResponse struct {
	ID        string             `json:"id"`
	TenantID  string             `json:"tenant_id"`
	Level     subscription.Level `json:"level"`
	Fee       *float64           `json:"fee,omitempty"`
	IsActive  bool               `json:"is_active"`
	StartsAt  *time.Time         `json:"starts_at,omitempty"`
	EndsAt    *time.Time         `json:"ends_at,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

type TenantListResponse struct {
	Tenants []TenantResponse `json:"tenants"`
	Total   int              `json:"total"`
}

type PlanListResponse struct {
	Plans []PlanResponse `json:"plans"`
}

type ListTenantsParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
}

func (p *ListTenantsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListTenantsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToTenantResponse(t *Tenant) TenantResponse {
	return TenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		TaxNumber: t.TaxNumber,
		MaxUsers:  t.MaxUsers,
		City:      t.City,
		District:  t.District,
		Address:   t.Address,
		IsActive:  t.IsActive,
		IsPaid:    t.IsPaid,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func ToPlanResponse(p *SubscriptionPlan) PlanResponse {
	return PlanResponse{
		ID:        p.ID,
		TenantID:  p.TenantID,
		Level:     p.Level,
		Fee:       p.Fee,
		IsActive:  p.IsActive,
		StartsAt:  p.StartsAt,
		EndsAt:    p.EndsAt,
		CreatedAt: p.CreatedAt,
	}
}

func ToPlanResponseList(plans []SubscriptionPlan) []PlanResponse {
	responses := make([]PlanResponse, 0, len(plans))
	for _, p := range plans {
		responses = append(responses, ToPlanResponse(&p))
	}
	return responses
}

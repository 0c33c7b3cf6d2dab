// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/classpanel/classpanel/internal/subscription"
)

type CreateUserRequest struct {
	Email     string                `json:"email"      validate:"required,email,max=255"`
	Password  string                `json:"password"   validate:"required,min=8,max=128"`
	Role      subscription.RoleType `json:"role"       validate:"required,oneof=student parent teacher coach tenant_admin super_admin"`
	TenantID  *string               `json:"tenant_id"  validate:"omitempty,uuid"`
	FirstName *string               `json:"first_name" validate:"omitempty,max=255"`
	LastName  *string               `json:"last_name"  validate:"omitempty,max=255"`
	Phone     *string               `json:"phone"      validate:"omitempty,max=20"`
	City      *string               `json:"city"       validate:"omitempty,max=255"`
	District  *string               `json:"district"   validate:"omitempty,max=255"`
	Address   *string               `json:"address"    validate:"omitempty,max=1000"`
}

type UpdateUserRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=255"`
	LastName  *string `json:"last_name,omitempty"  validate:"omitempty,max=255"`
	Phone     *string `json:"phone,omitempty"      validate:"omitempty,max=20"`
	City      *string `json:"city,omitempty"       validate:"omitempty,max=255"`
	District  *string `json:"district,omitempty"   validate:"omitempty,max=255"`
	Address   *string `json:"address,omitempty"    validate:"omitempty,max=1000"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

type CreatePlanRequest struct {
	Level    *subscription.Level `json:"level"     validate:"omitempty,oneof=free gold premium pro"`
	Fee      *float64            `json:"fee"       validate:"omitempty,min=0"`
	StartsAt *time.Time          `json:"starts_at"`
	EndsAt   *time.Time          `json:"ends_at"`
}

type UserResponse struct {
	ID            string                `json:"id"`
	TenantID      *string               `json:"tenant_id,omitempty"`
	Email         string                `json:"email"`
	Role          subscription.RoleType `json:"role,omitempty"`
	FirstName     *string               `json:"first_name,omitempty"`
	LastName      *string               `json:"last_name,omitempty"`
	Phone         *string               `json:"phone,omitempty"`
	City          *string               `json:"city,omitempty"`
	District      *string               `json:"district,omitempty"`
	Address       *string               `json:"address,omitempty"`
	EmailVerified bool                  `json:"email_verified"`
	IsActive      bool                  `json:"is_active"`
	LastLogin     *time.Time            `json:"last_login,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

type PlanResponse struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id"`
	Level     *subscription.Level `json:"level,omitempty"`
	Fee       *float64            `json:"fee,omitempty"`
	IsActive  bool                `json:"is_active"`
	StartsAt  *time.Time          `json:"starts_at,omitempty"`
	EndsAt    *time.Time          `json:"ends_at,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
}

func (p *ListUsersParams) Normalize() {
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

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User, role *Role) UserResponse {
	resp := UserResponse{
		ID:            u.ID,
		TenantID:      u.TenantID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Phone:         u.Phone,
		City:          u.City,
		District:      u.District,
		Address:       u.Address,
		EmailVerified: u.EmailVerified,
		IsActive:      u.IsActive,
		LastLogin:     u.LastLogin,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}

	if role != nil {
		resp.Role = role.RoleType
	}

	return resp
}

func ToPlanResponse(p *SubscriptionPlan) PlanResponse {
	return PlanResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Level:     p.Level,
		Fee:       p.Fee,
		IsActive:  p.IsActive,
		StartsAt:  p.StartsAt,
		EndsAt:    p.EndsAt,
		CreatedAt: p.CreatedAt,
	}
}

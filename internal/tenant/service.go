// AngelaMos | 2026
// service.go

package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/classpanel/classpanel/internal/core"
	"github.com/classpanel/classpanel/internal/subscription"
)

var ErrTaxNumberExists = errors.New("tax number already registered")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(
	ctx context.Context,
	req CreateTenantRequest,
) (*Tenant, error) {
	if req.TaxNumber != nil {
		_, err := s.repo.GetByTaxNumber(ctx, *req.TaxNumber)
		if err == nil {
			return nil, ErrTaxNumberExists
		}
		if !errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("check tax number: %w", err)
		}
	}

	tenant := &Tenant{
		ID:        uuid.New().String(),
		Name:      req.Name,
		TaxNumber: req.TaxNumber,
		MaxUsers:  req.MaxUsers,
		City:      req.City,
		District:  req.District,
		Address:   req.Address,
		IsActive:  true,
		IsPaid:    false,
	}

	if err := s.repo.Create(ctx, tenant); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrTaxNumberExists
		}
		return nil, err
	}

	return tenant, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateTenantRequest,
) (*Tenant, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		tenant.Name = *req.Name
	}
	if req.MaxUsers != nil {
		tenant.MaxUsers = req.MaxUsers
	}
	if req.City != nil {
		tenant.City = req.City
	}
	if req.District != nil {
		tenant.District = req.District
	}
	if req.Address != nil {
		tenant.Address = req.Address
	}
	if req.IsActive != nil {
		tenant.IsActive = *req.IsActive
	}
	if req.IsPaid != nil {
		tenant.IsPaid = *req.IsPaid
	}

	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, err
	}

	return tenant, nil
}

func (s *Service) List(
	ctx context.Context,
	params ListTenantsParams,
) ([]Tenant, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) CreatePlan(
	ctx context.Context,
	tenantID string,
	req CreatePlanRequest,
) (*SubscriptionPlan, error) {
	if _, err := s.repo.GetByID(ctx, tenantID); err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	plan := &SubscriptionPlan{
		ID:       uuid.New().String(),
		TenantID: tenantID,
		Level:    req.Level,
		Fee:      req.Fee,
		IsActive: isActive,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	}

	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

func (s *Service) ListPlans(
	ctx context.Context,
	tenantID string,
) ([]SubscriptionPlan, error) {
	if _, err := s.repo.GetByID(ctx, tenantID); err != nil {
		return nil, err
	}

	return s.repo.ListPlans(ctx, tenantID)
}

// ActiveLevel implements subscription.TenantPlans. Inactive plan rows
// never influence the outcome; a tenant without an active plan fails
// closed.
func (s *Service) ActiveLevel(
	ctx context.Context,
	tenantID string,
) (subscription.Level, error) {
	plan, err := s.repo.GetActivePlan(ctx, tenantID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", subscription.ErrNoActivePlan
		}
		return "", err
	}

	return plan.Level, nil
}

// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/classpanel/classpanel/internal/auth"
	"github.com/classpanel/classpanel/internal/core"
	"github.com/classpanel/classpanel/internal/subscription"
)

var ErrEmailExists = errors.New("email already exists")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a user together with its role assignment. The role
// inherits the user's tenant, so a tenant-bound student's role is scoped
// to the same tenant.
func (s *Service) Register(
	ctx context.Context,
	req CreateUserRequest,
) (*UserResponse, error) {
	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:           uuid.New().String(),
		TenantID:     req.TenantID,
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		City:         req.City,
		District:     req.District,
		Address:      req.Address,
		IsActive:     true,
	}

	role := &Role{
		ID:       uuid.New().String(),
		UserID:   u.ID,
		TenantID: req.TenantID,
		RoleType: req.Role,
	}

	if err := s.repo.CreateWithRole(ctx, u, role); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	resp := ToUserResponse(u, role)
	return &resp, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*UserResponse, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role, err := s.repo.GetRole(ctx, u.ID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	resp := ToUserResponse(u, role)
	return &resp, nil
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateUserRequest,
) (*UserResponse, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		u.FirstName = req.FirstName
	}
	if req.LastName != nil {
		u.LastName = req.LastName
	}
	if req.Phone != nil {
		u.Phone = req.Phone
	}
	if req.City != nil {
		u.City = req.City
	}
	if req.District != nil {
		u.District = req.District
	}
	if req.Address != nil {
		u.Address = req.Address
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	role, err := s.repo.GetRole(ctx, u.ID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	resp := ToUserResponse(u, role)
	return &resp, nil
}

func (s *Service) List(
	ctx context.Context,
	params ListUsersParams,
) (*UserListResponse, error) {
	params.Normalize()

	users, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i], nil))
	}

	return &UserListResponse{Users: responses, Total: total}, nil
}

// CreatePlan opens a personal subscription plan, deactivating any prior
// one so at most one stays active.
func (s *Service) CreatePlan(
	ctx context.Context,
	userID string,
	req CreatePlanRequest,
) (*PlanResponse, error) {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	plan := &SubscriptionPlan{
		ID:       uuid.New().String(),
		UserID:   userID,
		Level:    req.Level,
		Fee:      req.Fee,
		IsActive: true,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	}

	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}

	resp := ToPlanResponse(plan)
	return &resp, nil
}

func (s *Service) GetActivePlan(
	ctx context.Context,
	userID string,
) (*PlanResponse, error) {
	plan, err := s.repo.GetActivePlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := ToPlanResponse(plan)
	return &resp, nil
}

// PersonalLevel satisfies subscription.UserPlans. An active plan row
// without a level counts as no plan at all.
func (s *Service) PersonalLevel(
	ctx context.Context,
	userID string,
) (subscription.Level, bool, error) {
	plan, err := s.repo.GetActivePlan(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return subscription.LevelFree, false, nil
		}
		return subscription.LevelFree, false, err
	}

	if plan.Level == nil {
		return subscription.LevelFree, false, nil
	}

	return *plan.Level, true, nil
}

// GetByEmail satisfies auth.UserProvider.
func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return toAuthUser(u), nil
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toAuthUser(u), nil
}

func (s *Service) RoleOf(
	ctx context.Context,
	userID string,
) (*auth.RoleInfo, error) {
	role, err := s.repo.GetRole(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &auth.RoleInfo{
		RoleType: role.RoleType,
		TenantID: role.TenantID,
	}, nil
}

// RoleTypeOf reports the bare role type, for callers that only need to
// gate on it.
func (s *Service) RoleTypeOf(
	ctx context.Context,
	userID string,
) (subscription.RoleType, error) {
	role, err := s.repo.GetRole(ctx, userID)
	if err != nil {
		return "", err
	}

	return role.RoleType, nil
}

func (s *Service) RecordLogin(ctx context.Context, userID string) error {
	return s.repo.RecordLogin(ctx, userID)
}

func toAuthUser(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		TenantID:     u.TenantID,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
	}
}

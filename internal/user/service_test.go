// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpanel/classpanel/internal/core"
	"github.com/classpanel/classpanel/internal/subscription"
)

type fakeUserRepo struct {
	users map[string]*User
	roles map[string]*Role
	plans map[string][]SubscriptionPlan

	getByIDCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: map[string]*User{},
		roles: map[string]*Role{},
		plans: map[string][]SubscriptionPlan{},
	}
}

func (f *fakeUserRepo) CreateWithRole(
	_ context.Context,
	user *User,
	role *Role,
) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}
	f.users[user.ID] = user
	f.roles[user.ID] = role
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	f.getByIDCalls++
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(
	_ context.Context,
	email string,
) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (f *fakeUserRepo) ExistsByEmail(
	_ context.Context,
	email string,
) (bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *User) error {
	if _, ok := f.users[user.ID]; !ok {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) UpdatePassword(
	_ context.Context,
	id, passwordHash string,
) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) RecordLogin(_ context.Context, id string) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("record login: %w", core.ErrNotFound)
	}
	now := time.Now()
	u.LastLogin = &now
	return nil
}

func (f *fakeUserRepo) List(
	_ context.Context,
	_ ListUsersParams,
) ([]User, int, error) {
	users := make([]User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, *u)
	}
	return users, len(users), nil
}

func (f *fakeUserRepo) GetRole(
	_ context.Context,
	userID string,
) (*Role, error) {
	role, ok := f.roles[userID]
	if !ok {
		return nil, fmt.Errorf("get role: %w", core.ErrNotFound)
	}
	copied := *role
	return &copied, nil
}

func (f *fakeUserRepo) CreatePlan(
	_ context.Context,
	plan *SubscriptionPlan,
) error {
	if plan.IsActive {
		existing := f.plans[plan.UserID]
		for i := range existing {
			existing[i].IsActive = false
		}
	}
	f.plans[plan.UserID] = append(f.plans[plan.UserID], *plan)
	return nil
}

func (f *fakeUserRepo) GetActivePlan(
	_ context.Context,
	userID string,
) (*SubscriptionPlan, error) {
	plans := f.plans[userID]
	for i := len(plans) - 1; i >= 0; i-- {
		if plans[i].IsActive {
			copied := plans[i]
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("get active plan: %w", core.ErrNotFound)
}

func registerStudent(
	t *testing.T,
	svc *Service,
	email string,
	tenantID *string,
) *UserResponse {
	t.Helper()

	resp, err := svc.Register(context.Background(), CreateUserRequest{
		Email:    email,
		Password: "a strong password",
		Role:     subscription.RoleStudent,
		TenantID: tenantID,
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)

	resp := registerStudent(t, svc, "student@example.com", nil)

	stored := repo.users[resp.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "a strong password", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.True(t, stored.IsActive)
}

func TestRegisterRoleInheritsTenant(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)

	tenantID := "tenant-1"
	resp := registerStudent(t, svc, "student@tenant.example", &tenantID)

	role := repo.roles[resp.ID]
	require.NotNil(t, role)
	assert.Equal(t, subscription.RoleStudent, role.RoleType)
	require.NotNil(t, role.TenantID)
	assert.Equal(t, "tenant-1", *role.TenantID)
	assert.Equal(t, subscription.RoleStudent, resp.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewService(newFakeUserRepo())

	registerStudent(t, svc, "taken@example.com", nil)

	_, err := svc.Register(context.Background(), CreateUserRequest{
		Email:    "taken@example.com",
		Password: "a strong password",
		Role:     subscription.RoleParent,
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestPersonalLevelWithoutPlan(t *testing.T) {
	svc := NewService(newFakeUserRepo())
	resp := registerStudent(t, svc, "indie@example.com", nil)

	_, found, err := svc.PersonalLevel(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPersonalLevelNilLevelCountsAsAbsent(t *testing.T) {
	svc := NewService(newFakeUserRepo())
	resp := registerStudent(t, svc, "indie@example.com", nil)

	_, err := svc.CreatePlan(context.Background(), resp.ID, CreatePlanRequest{
		Level: nil,
	})
	require.NoError(t, err)

	_, found, err := svc.PersonalLevel(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPersonalLevelActivePlan(t *testing.T) {
	svc := NewService(newFakeUserRepo())
	resp := registerStudent(t, svc, "indie@example.com", nil)

	gold := subscription.LevelGold
	_, err := svc.CreatePlan(context.Background(), resp.ID, CreatePlanRequest{
		Level: &gold,
	})
	require.NoError(t, err)

	level, found, err := svc.PersonalLevel(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, subscription.LevelGold, level)
}

func TestCreatePlanReplacesActivePlan(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	resp := registerStudent(t, svc, "indie@example.com", nil)

	gold := subscription.LevelGold
	pro := subscription.LevelPro

	_, err := svc.CreatePlan(context.Background(), resp.ID, CreatePlanRequest{
		Level: &gold,
	})
	require.NoError(t, err)

	_, err = svc.CreatePlan(context.Background(), resp.ID, CreatePlanRequest{
		Level: &pro,
	})
	require.NoError(t, err)

	level, found, err := svc.PersonalLevel(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, subscription.LevelPro, level)

	active := 0
	for _, plan := range repo.plans[resp.ID] {
		if plan.IsActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestUpdateUserPartialFields(t *testing.T) {
	svc := NewService(newFakeUserRepo())
	resp := registerStudent(t, svc, "student@example.com", nil)

	firstName := "Ada"
	inactive := false
	updated, err := svc.Update(context.Background(), resp.ID, UpdateUserRequest{
		FirstName: &firstName,
		IsActive:  &inactive,
	})
	require.NoError(t, err)

	require.NotNil(t, updated.FirstName)
	assert.Equal(t, "Ada", *updated.FirstName)
	assert.False(t, updated.IsActive)
}

func TestUpdateUserFetchesOnce(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	resp := registerStudent(t, svc, "student@example.com", nil)

	repo.getByIDCalls = 0

	firstName := "Ada"
	updated, err := svc.Update(context.Background(), resp.ID, UpdateUserRequest{
		FirstName: &firstName,
	})
	require.NoError(t, err)

	// The updated struct is returned directly; no second lookup.
	assert.Equal(t, 1, repo.getByIDCalls)
	assert.Equal(t, subscription.RoleStudent, updated.Role)
}

func TestRoleTypeOf(t *testing.T) {
	svc := NewService(newFakeUserRepo())
	resp := registerStudent(t, svc, "student@example.com", nil)

	role, err := svc.RoleTypeOf(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.RoleStudent, role)

	_, err = svc.RoleTypeOf(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

// AngelaMos | 2026
// service_test.go

package tenant

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpanel/classpanel/internal/core"
	"github.com/classpanel/classpanel/internal/subscription"
)

type fakeRepo struct {
	tenants map[string]*Tenant
	plans   map[string][]SubscriptionPlan
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		tenants: map[string]*Tenant{},
		plans:   map[string][]SubscriptionPlan{},
	}
}

func (f *fakeRepo) Create(_ context.Context, tenant *Tenant) error {
	for _, existing := range f.tenants {
		if existing.TaxNumber != nil && tenant.TaxNumber != nil &&
			*existing.TaxNumber == *tenant.TaxNumber {
			return fmt.Errorf("create tenant: %w", core.ErrDuplicateKey)
		}
	}
	f.tenants[tenant.ID] = tenant
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Tenant, error) {
	tenant, ok := f.tenants[id]
	if !ok {
		return nil, fmt.Errorf("get tenant: %w", core.ErrNotFound)
	}
	copied := *tenant
	return &copied, nil
}

func (f *fakeRepo) GetByTaxNumber(
	_ context.Context,
	taxNumber string,
) (*Tenant, error) {
	for _, tenant := range f.tenants {
		if tenant.TaxNumber != nil && *tenant.TaxNumber == taxNumber {
			copied := *tenant
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("get tenant: %w", core.ErrNotFound)
}

func (f *fakeRepo) Update(_ context.Context, tenant *Tenant) error {
	if _, ok := f.tenants[tenant.ID]; !ok {
		return fmt.Errorf("update tenant: %w", core.ErrNotFound)
	}
	f.tenants[tenant.ID] = tenant
	return nil
}

func (f *fakeRepo) List(
	_ context.Context,
	_ ListTenantsParams,
) ([]Tenant, int, error) {
	tenants := make([]Tenant, 0, len(f.tenants))
	for _, tenant := range f.tenants {
		tenants = append(tenants, *tenant)
	}
	return tenants, len(tenants), nil
}

func (f *fakeRepo) CreatePlan(
	_ context.Context,
	plan *SubscriptionPlan,
) error {
	if plan.IsActive {
		existing := f.plans[plan.TenantID]
		for i := range existing {
			existing[i].IsActive = false
		}
	}
	f.plans[plan.TenantID] = append(f.plans[plan.TenantID], *plan)
	return nil
}

func (f *fakeRepo) GetActivePlan(
	_ context.Context,
	tenantID string,
) (*SubscriptionPlan, error) {
	plans := f.plans[tenantID]
	for i := len(plans) - 1; i >= 0; i-- {
		if plans[i].IsActive {
			copied := plans[i]
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("get active plan: %w", core.ErrNotFound)
}

func (f *fakeRepo) ListPlans(
	_ context.Context,
	tenantID string,
) ([]SubscriptionPlan, error) {
	return f.plans[tenantID], nil
}

func createTenant(t *testing.T, svc *Service, taxNumber string) *Tenant {
	t.Helper()

	req := CreateTenantRequest{Name: "Etude College"}
	if taxNumber != "" {
		req.TaxNumber = &taxNumber
	}

	tenant, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	return tenant
}

func TestCreateTenantRejectsDuplicateTaxNumber(t *testing.T) {
	svc := NewService(newFakeRepo())

	createTenant(t, svc, "1234567890")

	taxNumber := "1234567890"
	_, err := svc.Create(context.Background(), CreateTenantRequest{
		Name:      "Other College",
		TaxNumber: &taxNumber,
	})
	assert.ErrorIs(t, err, ErrTaxNumberExists)
}

func TestCreatePlanDeactivatesPrevious(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	tenant := createTenant(t, svc, "")

	_, err := svc.CreatePlan(context.Background(), tenant.ID, CreatePlanRequest{
		Level: subscription.LevelGold,
	})
	require.NoError(t, err)

	_, err = svc.CreatePlan(context.Background(), tenant.ID, CreatePlanRequest{
		Level: subscription.LevelPro,
	})
	require.NoError(t, err)

	plans, err := svc.ListPlans(context.Background(), tenant.ID)
	require.NoError(t, err)
	require.Len(t, plans, 2)

	active := 0
	for _, plan := range plans {
		if plan.IsActive {
			active++
			assert.Equal(t, subscription.LevelPro, plan.Level)
		}
	}
	assert.Equal(t, 1, active)
}

func TestActiveLevelReturnsCurrentPlan(t *testing.T) {
	svc := NewService(newFakeRepo())
	tenant := createTenant(t, svc, "")

	_, err := svc.CreatePlan(context.Background(), tenant.ID, CreatePlanRequest{
		Level: subscription.LevelPremium,
	})
	require.NoError(t, err)

	level, err := svc.ActiveLevel(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.LevelPremium, level)
}

func TestActiveLevelFailsClosedWithoutPlan(t *testing.T) {
	svc := NewService(newFakeRepo())
	tenant := createTenant(t, svc, "")

	_, err := svc.ActiveLevel(context.Background(), tenant.ID)
	assert.ErrorIs(t, err, subscription.ErrNoActivePlan)
}

func TestActiveLevelIgnoresInactivePlans(t *testing.T) {
	svc := NewService(newFakeRepo())
	tenant := createTenant(t, svc, "")

	inactive := false
	_, err := svc.CreatePlan(context.Background(), tenant.ID, CreatePlanRequest{
		Level:    subscription.LevelPro,
		IsActive: &inactive,
	})
	require.NoError(t, err)

	_, err = svc.ActiveLevel(context.Background(), tenant.ID)
	assert.ErrorIs(t, err, subscription.ErrNoActivePlan)
}

func TestCreatePlanUnknownTenant(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.CreatePlan(context.Background(), "missing", CreatePlanRequest{
		Level: subscription.LevelGold,
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateTenantPartialFields(t *testing.T) {
	svc := NewService(newFakeRepo())
	tenant := createTenant(t, svc, "")

	name := "Renamed College"
	paid := true
	updated, err := svc.Update(context.Background(), tenant.ID, UpdateTenantRequest{
		Name:   &name,
		IsPaid: &paid,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed College", updated.Name)
	assert.True(t, updated.IsPaid)
	assert.True(t, updated.IsActive)
}

// AngelaMos | 2026
// resolver_test.go

package subscription

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTenantPlans struct {
	levels map[string]Level
}

func (f *fakeTenantPlans) ActiveLevel(
	_ context.Context,
	tenantID string,
) (Level, error) {
	level, ok := f.levels[tenantID]
	if !ok {
		return "", ErrNoActivePlan
	}
	return level, nil
}

type fakeUserPlans struct {
	levels map[string]Level
}

func (f *fakeUserPlans) PersonalLevel(
	_ context.Context,
	userID string,
) (Level, bool, error) {
	level, ok := f.levels[userID]
	if !ok {
		return LevelFree, false, nil
	}
	return level, true, nil
}

func newTestResolver(
	tenantLevels, userLevels map[string]Level,
) *Resolver {
	return NewResolver(
		&fakeTenantPlans{levels: tenantLevels},
		&fakeUserPlans{levels: userLevels},
		DefaultFeatureTable(),
	)
}

func strPtr(s string) *string { return &s }

func TestResolveTenantBoundStudent(t *testing.T) {
	r := newTestResolver(
		map[string]Level{"tenant-1": LevelPremium},
		nil,
	)

	access, err := r.Resolve(context.Background(), Subject{
		UserID:   "user-1",
		TenantID: strPtr("tenant-1"),
		Role:     RoleStudent,
	})
	require.NoError(t, err)

	assert.Equal(t, LevelPremium, access.Level)
	assert.Equal(t, 20, access.Entitlement.MaxUsers)
	assert.Contains(t, access.Entitlement.Features, "analytics")
}

func TestResolveTenantWithoutActivePlanFailsClosed(t *testing.T) {
	r := newTestResolver(nil, nil)

	for _, role := range []RoleType{RoleStudent, RoleParent, RoleTenantAdmin} {
		_, err := r.Resolve(context.Background(), Subject{
			UserID:   "user-1",
			TenantID: strPtr("tenant-without-plan"),
			Role:     role,
		})
		assert.ErrorIs(t, err, ErrNoActivePlan, "role %s", role)
	}
}

func TestResolveIndependentStudentWithPersonalPlan(t *testing.T) {
	r := newTestResolver(
		nil,
		map[string]Level{"user-1": LevelGold},
	)

	access, err := r.Resolve(context.Background(), Subject{
		UserID: "user-1",
		Role:   RoleStudent,
	})
	require.NoError(t, err)

	assert.Equal(t, LevelGold, access.Level)
	assert.Equal(t, 5, access.Entitlement.MaxUsers)
}

func TestResolveIndependentStudentDefaultsToFree(t *testing.T) {
	r := newTestResolver(nil, nil)

	access, err := r.Resolve(context.Background(), Subject{
		UserID: "user-without-plan",
		Role:   RoleParent,
	})
	require.NoError(t, err)

	assert.Equal(t, LevelFree, access.Level)
	assert.Equal(t, []string{"basic_dashboard"}, access.Entitlement.Features)
}

func TestResolveTeacherAndCoachAlwaysFree(t *testing.T) {
	// Even with a rich tenant plan and a personal plan, staff roles
	// stay at the free tier.
	r := newTestResolver(
		map[string]Level{"tenant-1": LevelPro},
		map[string]Level{"user-1": LevelPro},
	)

	for _, role := range []RoleType{RoleTeacher, RoleCoach} {
		access, err := r.Resolve(context.Background(), Subject{
			UserID:   "user-1",
			TenantID: strPtr("tenant-1"),
			Role:     role,
		})
		require.NoError(t, err)
		assert.Equal(t, LevelFree, access.Level, "role %s", role)
	}
}

func TestResolveTenantAdminRequiresTenant(t *testing.T) {
	r := newTestResolver(nil, nil)

	_, err := r.Resolve(context.Background(), Subject{
		UserID: "user-1",
		Role:   RoleTenantAdmin,
	})
	assert.ErrorIs(t, err, ErrMissingTenant)
}

func TestResolveTenantAdminGetsTenantPlan(t *testing.T) {
	r := newTestResolver(
		map[string]Level{"tenant-1": LevelGold},
		nil,
	)

	access, err := r.Resolve(context.Background(), Subject{
		UserID:   "admin-1",
		TenantID: strPtr("tenant-1"),
		Role:     RoleTenantAdmin,
	})
	require.NoError(t, err)

	assert.Equal(t, LevelGold, access.Level)
}

func TestResolveSuperAdminTopTier(t *testing.T) {
	// Super admins never consult plan stores at all.
	r := NewResolver(nil, nil, DefaultFeatureTable())

	access, err := r.Resolve(context.Background(), Subject{
		UserID: "root",
		Role:   RoleSuperAdmin,
	})
	require.NoError(t, err)

	assert.Equal(t, LevelPro, access.Level)
	assert.Equal(t, 100, access.Entitlement.MaxUsers)
	assert.Contains(t, access.Entitlement.Features, "all_features")
}

func TestResolveUnknownRole(t *testing.T) {
	r := newTestResolver(nil, nil)

	_, err := r.Resolve(context.Background(), Subject{
		UserID: "user-1",
		Role:   RoleType("janitor"),
	})
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestResolveEmptyTenantStringTreatedAsIndependent(t *testing.T) {
	r := newTestResolver(nil, map[string]Level{"user-1": LevelGold})

	access, err := r.Resolve(context.Background(), Subject{
		UserID:   "user-1",
		TenantID: strPtr(""),
		Role:     RoleStudent,
	})
	require.NoError(t, err)

	assert.Equal(t, LevelGold, access.Level)
}

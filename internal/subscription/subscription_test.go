// AngelaMos | 2026
// subscription_test.go

package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeatureTableRejectsUnknownLevel(t *testing.T) {
	entries := map[Level]Entitlement{
		Level("platinum"): {MaxUsers: 1},
	}

	_, err := NewFeatureTable(entries)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown level")
}

func TestNewFeatureTableRequiresEveryLevel(t *testing.T) {
	entries := map[Level]Entitlement{
		LevelFree: {MaxUsers: 1},
		LevelGold: {MaxUsers: 5},
	}

	_, err := NewFeatureTable(entries)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing level")
}

func TestDefaultFeatureTableCoversAllLevels(t *testing.T) {
	table := DefaultFeatureTable()

	for _, level := range Levels() {
		ent, err := table.Entitlement(level)
		require.NoError(t, err, "level %s", level)
		assert.NotEmpty(t, ent.Features, "level %s", level)
		assert.Positive(t, ent.MaxUsers, "level %s", level)
	}
}

func TestEntitlementLookupReturnsCopy(t *testing.T) {
	table := DefaultFeatureTable()

	first, err := table.Entitlement(LevelGold)
	require.NoError(t, err)

	first.Features[0] = "mutated"

	second, err := table.Entitlement(LevelGold)
	require.NoError(t, err)
	assert.Equal(t, "dashboard", second.Features[0])
}

func TestEntitlementLookupUnknownLevel(t *testing.T) {
	table := DefaultFeatureTable()

	_, err := table.Entitlement(Level("titanium"))
	assert.Error(t, err)
}

func TestLevelAndRoleValidation(t *testing.T) {
	assert.True(t, LevelPremium.Valid())
	assert.False(t, Level("diamond").Valid())

	assert.True(t, RoleTenantAdmin.Valid())
	assert.False(t, RoleType("principal").Valid())
}

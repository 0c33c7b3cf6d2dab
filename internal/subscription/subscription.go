// AngelaMos | 2026
// subscription.go

package subscription

import (
	"fmt"
	"slices"
)

type Level string

const (
	LevelFree    Level = "free"
	LevelGold    Level = "gold"
	LevelPremium Level = "premium"
	LevelPro     Level = "pro"
)

func Levels() []Level {
	return []Level{LevelFree, LevelGold, LevelPremium, LevelPro}
}

func (l Level) Valid() bool {
	return slices.Contains(Levels(), l)
}

type RoleType string

const (
	RoleStudent     RoleType = "student"
	RoleParent      RoleType = "parent"
	RoleTeacher     RoleType = "teacher"
	RoleCoach       RoleType = "coach"
	RoleTenantAdmin RoleType = "tenant_admin"
	RoleSuperAdmin  RoleType = "super_admin"
)

func Roles() []RoleType {
	return []RoleType{
		RoleStudent,
		RoleParent,
		RoleTeacher,
		RoleCoach,
		RoleTenantAdmin,
		RoleSuperAdmin,
	}
}

func (r RoleType) Valid() bool {
	return slices.Contains(Roles(), r)
}

// Entitlement is the feature payload embedded into access tokens.
// Tokens snapshot it at issuance; later table changes do not affect
// tokens already in circulation.
type Entitlement struct {
	MaxUsers       int      `json:"max_users"`
	StorageLimitGB int      `json:"storage_limit_gb"`
	Support        string   `json:"support"`
	Features       []string `json:"features"`
}

func (e Entitlement) clone() Entitlement {
	e.Features = slices.Clone(e.Features)
	return e
}

// FeatureTable maps every subscription level to its entitlement.
// It is fixed at process start and read-only afterwards.
type FeatureTable struct {
	entries map[Level]Entitlement
}

func NewFeatureTable(entries map[Level]Entitlement) (*FeatureTable, error) {
	table := make(map[Level]Entitlement, len(entries))

	for level, ent := range entries {
		if !level.Valid() {
			return nil, fmt.Errorf("feature table: unknown level %q", level)
		}
		table[level] = ent.clone()
	}

	for _, level := range Levels() {
		if _, ok := table[level]; !ok {
			return nil, fmt.Errorf("feature table: missing level %q", level)
		}
	}

	return &FeatureTable{entries: table}, nil
}

func DefaultFeatureTable() *FeatureTable {
	table, err := NewFeatureTable(map[Level]Entitlement{
		LevelFree: {
			MaxUsers:       1,
			StorageLimitGB: 1,
			Support:        "none",
			Features:       []string{"basic_dashboard"},
		},
		LevelGold: {
			MaxUsers:       5,
			StorageLimitGB: 10,
			Support:        "email",
			Features:       []string{"dashboard", "basic_reports"},
		},
		LevelPremium: {
			MaxUsers:       20,
			StorageLimitGB: 50,
			Support:        "priority_email",
			Features: []string{
				"advanced_dashboard",
				"team_collaboration",
				"analytics",
			},
		},
		LevelPro: {
			MaxUsers:       100,
			StorageLimitGB: 200,
			Support:        "24_7_support",
			Features: []string{
				"all_features",
				"custom_integrations",
				"dedicated_manager",
			},
		},
	})
	if err != nil {
		panic(fmt.Sprintf("subscription: default feature table: %v", err))
	}
	return table
}

func (t *FeatureTable) Entitlement(level Level) (Entitlement, error) {
	ent, ok := t.entries[level]
	if !ok {
		return Entitlement{}, fmt.Errorf(
			"feature table: no entry for level %q",
			level,
		)
	}
	return ent.clone(), nil
}

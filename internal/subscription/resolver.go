// AngelaMos | 2026
// resolver.go

package subscription

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnknownRole   = errors.New("unknown role")
	ErrNoActivePlan  = errors.New("no active subscription plan")
	ErrMissingTenant = errors.New("role requires a tenant")
)

// TenantPlans reports the level of a tenant's single active plan.
// Implementations return ErrNoActivePlan when the tenant has none.
type TenantPlans interface {
	ActiveLevel(ctx context.Context, tenantID string) (Level, error)
}

// UserPlans reports a user's personal plan level. A plan row without
// a level counts as absent.
type UserPlans interface {
	PersonalLevel(ctx context.Context, userID string) (Level, bool, error)
}

// Subject is the authenticated identity being resolved: the user, the
// tenant they belong to (if any), and their assigned role.
type Subject struct {
	UserID   string
	TenantID *string
	Role     RoleType
}

func (s Subject) tenantID() string {
	if s.TenantID == nil {
		return ""
	}
	return *s.TenantID
}

// Access is the resolved outcome embedded into the session token.
type Access struct {
	Level       Level
	Entitlement Entitlement
}

// Resolver maps a user's role and tenant context to an effective
// subscription level and its entitlement payload. It only reads; for
// fixed store contents the outcome is deterministic.
type Resolver struct {
	tenantPlans TenantPlans
	userPlans   UserPlans
	table       *FeatureTable
}

func NewResolver(
	tenantPlans TenantPlans,
	userPlans UserPlans,
	table *FeatureTable,
) *Resolver {
	return &Resolver{
		tenantPlans: tenantPlans,
		userPlans:   userPlans,
		table:       table,
	}
}

// Resolve applies the role decision table:
//
//	student/parent with a tenant  -> tenant's active plan (none: fail closed)
//	student/parent independent    -> personal plan, defaulting to free
//	teacher/coach                 -> always free
//	tenant_admin                  -> tenant's active plan; tenant required
//	super_admin                   -> top tier, unconditionally
//	anything else                 -> ErrUnknownRole
func (r *Resolver) Resolve(ctx context.Context, sub Subject) (*Access, error) {
	switch sub.Role {
	case RoleStudent, RoleParent:
		if tenantID := sub.tenantID(); tenantID != "" {
			return r.tenantAccess(ctx, tenantID)
		}
		return r.personalAccess(ctx, sub.UserID)

	case RoleTeacher, RoleCoach:
		return r.access(LevelFree)

	case RoleTenantAdmin:
		tenantID := sub.tenantID()
		if tenantID == "" {
			return nil, fmt.Errorf("resolve tenant_admin: %w", ErrMissingTenant)
		}
		return r.tenantAccess(ctx, tenantID)

	case RoleSuperAdmin:
		return r.access(LevelPro)

	default:
		return nil, fmt.Errorf("resolve role %q: %w", sub.Role, ErrUnknownRole)
	}
}

func (r *Resolver) tenantAccess(
	ctx context.Context,
	tenantID string,
) (*Access, error) {
	level, err := r.tenantPlans.ActiveLevel(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant plan: %w", err)
	}

	return r.access(level)
}

func (r *Resolver) personalAccess(
	ctx context.Context,
	userID string,
) (*Access, error) {
	level, found, err := r.userPlans.PersonalLevel(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve personal plan: %w", err)
	}

	if !found {
		level = LevelFree
	}

	return r.access(level)
}

func (r *Resolver) access(level Level) (*Access, error) {
	ent, err := r.table.Entitlement(level)
	if err != nil {
		return nil, err
	}

	return &Access{Level: level, Entitlement: ent}, nil
}

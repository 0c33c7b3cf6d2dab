// AngelaMos | 2026
// entity.go

package tenant

import (
	"time"

	"github.com/classpanel/classpanel/internal/subscription"
)

type Tenant struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	TaxNumber *string   `db:"tax_number"`
	MaxUsers  *int      `db:"max_users"`
	City      *string   `db:"city"`
	District  *string   `db:"district"`
	Address   *string   `db:"address"`
	IsActive  bool      `db:"is_active"`
	IsPaid    bool      `db:"is_paid"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SubscriptionPlan is an organization-wide plan row. At most one row
// per tenant carries is_active=true at any time.
type SubscriptionPlan struct {
	ID        string             `db:"id"`
	TenantID  string             `db:"tenant_id"`
	Level     subscription.Level `db:"level"`
	Fee       *float64           `db:"fee"`
	IsActive  bool               `db:"is_active"`
	StartsAt  *time.Time         `db:"starts_at"`
	EndsAt    *time.Time         `db:"ends_at"`
	CreatedAt time.Time          `db:"created_at"`
}

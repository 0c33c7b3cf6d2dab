// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/classpanel/classpanel/internal/subscription"
)

// User rows are never physically deleted; deactivation flips is_active.
type User struct {
	ID            string     `db:"id"`
	TenantID      *string    `db:"tenant_id"`
	Email         string     `db:"email"`
	PasswordHash  string     `db:"password_hash"`
	FirstName     *string    `db:"first_name"`
	LastName      *string    `db:"last_name"`
	Phone         *string    `db:"phone"`
	City          *string    `db:"city"`
	District      *string    `db:"district"`
	Address       *string    `db:"address"`
	EmailVerified bool       `db:"email_verified"`
	IsActive      bool       `db:"is_active"`
	LastLogin     *time.Time `db:"last_login"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

func (u *User) IsIndependent() bool {
	return u.TenantID == nil || *u.TenantID == ""
}

// Role is a user's single role assignment, immutable once created.
type Role struct {
	ID        string                `db:"id"`
	UserID    string                `db:"user_id"`
	TenantID  *string               `db:"tenant_id"`
	RoleType  subscription.RoleType `db:"role_type"`
	CreatedAt time.Time             `db:"created_at"`
}

// SubscriptionPlan is a personal plan row for independent users.
// Level is nullable; a row without one resolves as if absent.
type SubscriptionPlan struct {
	ID        string              `db:"id"`
	UserID    string              `db:"user_id"`
	Level     *subscription.Level `db:"level"`
	Fee       *float64            `db:"fee"`
	IsActive  bool                `db:"is_active"`
	StartsAt  *time.Time          `db:"starts_at"`
	EndsAt    *time.Time          `db:"ends_at"`
	CreatedAt time.Time           `db:"created_at"`
}

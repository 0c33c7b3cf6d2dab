// AngelaMos | 2026
// repository.go

package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/classpanel/classpanel/internal/core"
)

type Repository interface {
	Create(ctx context.Context, tenant *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetByTaxNumber(ctx context.Context, taxNumber string) (*Tenant, error)
	Update(ctx context.Context, tenant *Tenant) error
	List(ctx context.Context, params ListTenantsParams) ([]Tenant, int, error)
	CreatePlan(ctx context.Context, plan *SubscriptionPlan) error
	GetActivePlan(
		ctx context.Context,
		tenantID string,
	) (*SubscriptionPlan, error)
	ListPlans(ctx context.Context, tenantID string) ([]SubscriptionPlan, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, tenant *Tenant) error {
	query := `
		INSERT INTO tenants (
			id, name, tax_number, max_users, city, district, address,
			is_active, is_paid
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, tenant, query,
		tenant.ID,
		tenant.Name,
		tenant.TaxNumber,
		tenant.MaxUsers,
		tenant.City,
		tenant.District,
		tenant.Address,
		tenant.IsActive,
		tenant.IsPaid,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create tenant: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create tenant: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Tenant, error) {
	query := `
		SELECT id, name, tax_number, max_users, city, district, address,
		       is_active, is_paid, created_at, updated_at
		FROM tenants
		WHERE id = $1`

	var tenant Tenant
	err := r.db.GetContext(ctx, &tenant, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get tenant: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}

	return &tenant, nil
}

func (r *repository) GetByTaxNumber(
	ctx context.Context,
	taxNumber string,
) (*Tenant, error) {
	query := `
		SELECT id, name, tax_number, max_users, city, district, address,
		       is_active, is_paid, created_at, updated_at
		FROM tenants
		WHERE tax_number = $1`

	var tenant Tenant
	err := r.db.GetContext(ctx, &tenant, query, taxNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get tenant by tax number: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant by tax number: %w", err)
	}

	return &tenant, nil
}

func (r *repository) Update(ctx context.Context, tenant *Tenant) error {
	query := `
		UPDATE tenants
		SET name = $2, max_users = $3, city = $4, district = $5,
		    address = $6, is_active = $7, is_paid = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &tenant.UpdatedAt, query,
		tenant.ID,
		tenant.Name,
		tenant.MaxUsers,
		tenant.City,
		tenant.District,
		tenant.Address,
		tenant.IsActive,
		tenant.IsPaid,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update tenant: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListTenantsParams,
) ([]Tenant, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%d OR city ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM tenants WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count tenants: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, tax_number, max_users, city, district, address,
		       is_active, is_paid, created_at, updated_at
		FROM tenants
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var tenants []Tenant
	if err := r.db.SelectContext(ctx, &tenants, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tenants: %w", err)
	}

	return tenants, total, nil
}

func (r *repository) CreatePlan(
	ctx context.Context,
	plan *SubscriptionPlan,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if plan.IsActive {
			deactivate := `
				UPDATE tenant_subscription_plans
				SET is_active = false
				WHERE tenant_id = $1 AND is_active = true`

			if _, err := tx.ExecContext(ctx, deactivate, plan.TenantID); err != nil {
				return fmt.Errorf("deactivate prior plans: %w", err)
			}
		}

		insert := `
			INSERT INTO tenant_subscription_plans (
				id, tenant_id, level, fee, is_active, starts_at, ends_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7
			)
			RETURNING created_at`

		err := tx.GetContext(ctx, &plan.CreatedAt, insert,
			plan.ID,
			plan.TenantID,
			plan.Level,
			plan.Fee,
			plan.IsActive,
			plan.StartsAt,
			plan.EndsAt,
		)
		if err != nil {
			if isForeignKeyError(err) {
				return fmt.Errorf("create tenant plan: %w", core.ErrNotFound)
			}
			return fmt.Errorf("create tenant plan: %w", err)
		}

		return nil
	})
}

func (r *repository) GetActivePlan(
	ctx context.Context,
	tenantID string,
) (*SubscriptionPlan, error) {
	query := `
		SELECT id, tenant_id, level, fee, is_active, starts_at, ends_at,
		       created_at
		FROM tenant_subscription_plans
		WHERE tenant_id = $1 AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1`

	var plan SubscriptionPlan
	err := r.db.GetContext(ctx, &plan, query, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get active tenant plan: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get active tenant plan: %w", err)
	}

	return &plan, nil
}

func (r *repository) ListPlans(
	ctx context.Context,
	tenantID string,
) ([]SubscriptionPlan, error) {
	query := `
		SELECT id, tenant_id, level, fee, is_active, starts_at, ends_at,
		       created_at
		FROM tenant_subscription_plans
		WHERE tenant_id = $1
		ORDER BY created_at DESC`

	var plans []SubscriptionPlan
	if err := r.db.SelectContext(ctx, &plans, query, tenantID); err != nil {
		return nil, fmt.Errorf("list tenant plans: %w", err)
	}

	return plans, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

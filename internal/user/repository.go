// AngelaMos | 2026
// repository.go

package user

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
	CreateWithRole(ctx context.Context, user *User, role *Role) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	RecordLogin(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	GetRole(ctx context.Context, userID string) (*Role, error)
	CreatePlan(ctx context.Context, plan *SubscriptionPlan) error
	GetActivePlan(ctx context.Context, userID string) (*SubscriptionPlan, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const userColumns = `
	id, tenant_id, email, password_hash, first_name, last_name,
	phone, city, district, address, email_verified, is_active,
	last_login, created_at, updated_at`

func (r *repository) CreateWithRole(
	ctx context.Context,
	user *User,
	role *Role,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		insertUser := `
			INSERT INTO users (
				id, tenant_id, email, password_hash, first_name, last_name,
				phone, city, district, address
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
			)
			RETURNING created_at, updated_at`

		err := tx.GetContext(ctx, user, insertUser,
			user.ID,
			user.TenantID,
			user.Email,
			user.PasswordHash,
			user.FirstName,
			user.LastName,
			user.Phone,
			user.City,
			user.District,
			user.Address,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
			}
			return fmt.Errorf("create user: %w", err)
		}

		insertRole := `
			INSERT INTO user_roles (id, user_id, tenant_id, role_type)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at`

		err = tx.GetContext(ctx, &role.CreatedAt, insertRole,
			role.ID,
			role.UserID,
			role.TenantID,
			role.RoleType,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("create user role: %w", core.ErrDuplicateKey)
			}
			return fmt.Errorf("create user role: %w", err)
		}

		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM users WHERE id = $1",
		userColumns,
	)

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM users WHERE email = $1",
		userColumns,
	)

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return exists, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, phone = $4, city = $5,
		    district = $6, address = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.City,
		user.District,
		user.Address,
		user.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) RecordLogin(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET last_login = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("record login: %w", err)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.TenantID != "" {
		conditions = append(conditions, fmt.Sprintf("tenant_id = $%d", argIdx))
		args = append(args, params.TenantID)
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf(
			"id IN (SELECT user_id FROM user_roles WHERE role_type = $%d)",
			argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) GetRole(
	ctx context.Context,
	userID string,
) (*Role, error) {
	query := `
		SELECT id, user_id, tenant_id, role_type, created_at
		FROM user_roles
		WHERE user_id = $1
		ORDER BY created_at ASC
		LIMIT 1`

	var role Role
	err := r.db.GetContext(ctx, &role, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user role: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user role: %w", err)
	}

	return &role, nil
}

func (r *repository) CreatePlan(
	ctx context.Context,
	plan *SubscriptionPlan,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		deactivate := `
			UPDATE user_subscription_plans
			SET is_active = false
			WHERE user_id = $1 AND is_active = true`

		if _, err := tx.ExecContext(ctx, deactivate, plan.UserID); err != nil {
			return fmt.Errorf("deactivate prior plans: %w", err)
		}

		insert := `
			INSERT INTO user_subscription_plans (
				id, user_id, level, fee, is_active, starts_at, ends_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7
			)
			RETURNING created_at`

		err := tx.GetContext(ctx, &plan.CreatedAt, insert,
			plan.ID,
			plan.UserID,
			plan.Level,
			plan.Fee,
			plan.IsActive,
			plan.StartsAt,
			plan.EndsAt,
		)
		if err != nil {
			if isForeignKeyError(err) {
				return fmt.Errorf("create user plan: %w", core.ErrNotFound)
			}
			return fmt.Errorf("create user plan: %w", err)
		}

		return nil
	})
}

func (r *repository) GetActivePlan(
	ctx context.Context,
	userID string,
) (*SubscriptionPlan, error) {
	query := `
		SELECT id, user_id, level, fee, is_active, starts_at, ends_at,
		       created_at
		FROM user_subscription_plans
		WHERE user_id = $1 AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1`

	var plan SubscriptionPlan
	err := r.db.GetContext(ctx, &plan, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get active user plan: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get active user plan: %w", err)
	}

	return &plan, nil
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

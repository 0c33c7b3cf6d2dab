// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/classpanel/classpanel/internal/core"
)

type Handler struct {
	db         *sqlx.DB
	redisStats func() *redis.PoolStats
}

func NewHandler(db *sqlx.DB, redisClient *redis.Client) *Handler {
	return &Handler{
		db:         db,
		redisStats: redisClient.PoolStats,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, superAdminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(superAdminOnly)

		r.Get("/stats", h.GetPlatformStats)
		r.Get("/stats/system", h.GetSystemStats)
	})
}

// GetPlatformStats reports tenancy and subscription counts across the
// platform.
func (h *Handler) GetPlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.collectPlatformStats(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, stats)
}

func (h *Handler) collectPlatformStats(
	ctx context.Context,
) (*PlatformStatsResponse, error) {
	stats := &PlatformStatsResponse{
		UsersByRole: map[string]int{},
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM tenants`, &stats.Tenants},
		{`SELECT COUNT(*) FROM tenants WHERE is_active = true`, &stats.ActiveTenants},
		{`SELECT COUNT(*) FROM users`, &stats.Users},
		{`SELECT COUNT(*) FROM users WHERE is_active = true`, &stats.ActiveUsers},
		{
			`SELECT COUNT(*) FROM tenant_subscription_plans WHERE is_active = true`,
			&stats.ActiveTenantPlans,
		},
		{
			`SELECT COUNT(*) FROM user_subscription_plans WHERE is_active = true`,
			&stats.ActiveUserPlans,
		},
	}

	for _, c := range counts {
		if err := h.db.GetContext(ctx, c.dest, c.query); err != nil {
			return nil, fmt.Errorf("collect platform stats: %w", err)
		}
	}

	rows := []struct {
		RoleType string `db:"role_type"`
		Count    int    `db:"count"`
	}{}

	roleQuery := `
		SELECT role_type, COUNT(*) AS count
		FROM user_roles
		GROUP BY role_type`

	if err := h.db.SelectContext(ctx, &rows, roleQuery); err != nil {
		return nil, fmt.Errorf("collect role stats: %w", err)
	}

	for _, row := range rows {
		stats.UsersByRole[row.RoleType] = row.Count
	}

	return stats, nil
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := SystemStatsResponse{
		Database: toDBPoolStats(h.db.Stats()),
		Redis:    toRedisPoolStats(h.redisStats()),
		Runtime: RuntimeStats{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			NumCPU:       runtime.NumCPU(),
			MemAlloc:     memStats.Alloc,
			MemSys:       memStats.Sys,
			NumGC:        memStats.NumGC,
		},
	}

	core.OK(w, response)
}

type PlatformStatsResponse struct {
	Tenants           int            `json:"tenants"`
	ActiveTenants     int            `json:"active_tenants"`
	Users             int            `json:"users"`
	ActiveUsers       int            `json:"active_users"`
	ActiveTenantPlans int            `json:"active_tenant_plans"`
	ActiveUserPlans   int            `json:"active_user_plans"`
	UsersByRole       map[string]int `json:"users_by_role"`
}

type SystemStatsResponse struct {
	Database DBPoolStats    `json:"database"`
	Redis    RedisPoolStats `json:"redis"`
	Runtime  RuntimeStats   `json:"runtime"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}

func toDBPoolStats(stats sql.DBStats) DBPoolStats {
	return DBPoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration.String(),
	}
}

func toRedisPoolStats(stats *redis.PoolStats) RedisPoolStats {
	if stats == nil {
		return RedisPoolStats{}
	}

	return RedisPoolStats{
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Timeouts:   stats.Timeouts,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
	}
}

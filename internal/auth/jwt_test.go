// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpanel/classpanel/internal/config"
	"github.com/classpanel/classpanel/internal/core"
	"github.com/classpanel/classpanel/internal/subscription"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "0123456789abcdef0123456789abcdef",
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: 7 * 24 * time.Hour,
		Issuer:             "classpanel",
		Audience:           "classpanel-api",
	}
}

func testEntitlement() subscription.Entitlement {
	return subscription.Entitlement{
		MaxUsers:       20,
		StorageLimitGB: 50,
		Support:        "priority_email",
		Features:       []string{"advanced_dashboard", "analytics"},
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m, err := NewJWTManager(testJWTConfig())
	require.NoError(t, err)

	tenantID := "tenant-1"
	signed, err := m.CreateAccessToken(AccessTokenClaims{
		UserID:      "user-1",
		TenantID:    &tenantID,
		Role:        subscription.RoleStudent,
		Level:       subscription.LevelPremium,
		Entitlement: testEntitlement(),
	})
	require.NoError(t, err)

	claims, err := m.VerifyAccessToken(context.Background(), signed)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, "tenant-1", *claims.TenantID)
	assert.Equal(t, subscription.RoleStudent, claims.Role)
	assert.Equal(t, subscription.LevelPremium, claims.Level)
	assert.Equal(t, testEntitlement(), claims.Entitlement)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(
		t,
		time.Now().Add(15*time.Minute),
		claims.ExpiresAt,
		time.Minute,
	)
}

func TestAccessTokenWithoutTenant(t *testing.T) {
	m, err := NewJWTManager(testJWTConfig())
	require.NoError(t, err)

	signed, err := m.CreateAccessToken(AccessTokenClaims{
		UserID:      "user-1",
		Role:        subscription.RoleParent,
		Level:       subscription.LevelFree,
		Entitlement: testEntitlement(),
	})
	require.NoError(t, err)

	claims, err := m.VerifyAccessToken(context.Background(), signed)
	require.NoError(t, err)

	assert.Nil(t, claims.TenantID)
}

func TestVerifyExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessTokenExpire = -time.Minute

	m, err := NewJWTManager(cfg)
	require.NoError(t, err)

	signed, err := m.CreateAccessToken(AccessTokenClaims{
		UserID:      "user-1",
		Role:        subscription.RoleStudent,
		Level:       subscription.LevelFree,
		Entitlement: testEntitlement(),
	})
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(context.Background(), signed)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	m1, err := NewJWTManager(testJWTConfig())
	require.NoError(t, err)

	otherCfg := testJWTConfig()
	otherCfg.Secret = "ffffffffffffffffffffffffffffffff"
	m2, err := NewJWTManager(otherCfg)
	require.NoError(t, err)

	signed, err := m1.CreateAccessToken(AccessTokenClaims{
		UserID:      "user-1",
		Role:        subscription.RoleStudent,
		Level:       subscription.LevelFree,
		Entitlement: testEntitlement(),
	})
	require.NoError(t, err)

	_, err = m2.VerifyAccessToken(context.Background(), signed)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m, err := NewJWTManager(testJWTConfig())
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestCreateRefreshToken(t *testing.T) {
	m, err := NewJWTManager(testJWTConfig())
	require.NoError(t, err)

	data, err := m.CreateRefreshToken("user-1", "")
	require.NoError(t, err)

	assert.NotEmpty(t, data.Token)
	assert.NotEmpty(t, data.FamilyID)
	assert.True(t, m.VerifyRefreshTokenHash(data.Token, data.Hash))
	assert.False(t, m.VerifyRefreshTokenHash("other-token", data.Hash))

	rotated, err := m.CreateRefreshToken("user-1", data.FamilyID)
	require.NoError(t, err)
	assert.Equal(t, data.FamilyID, rotated.FamilyID)
	assert.NotEqual(t, data.Token, rotated.Token)
}

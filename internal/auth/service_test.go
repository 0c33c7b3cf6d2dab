// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpanel/classpanel/internal/core"
	"github.com/classpanel/classpanel/internal/subscription"
)

type fakeUserProvider struct {
	byEmail map[string]*UserInfo
	roles   map[string]*RoleInfo
	logins  map[string]int
}

func (f *fakeUserProvider) GetByEmail(
	_ context.Context,
	email string,
) (*UserInfo, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserProvider) GetByID(
	_ context.Context,
	id string,
) (*UserInfo, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (f *fakeUserProvider) RoleOf(
	_ context.Context,
	userID string,
) (*RoleInfo, error) {
	role, ok := f.roles[userID]
	if !ok {
		return nil, fmt.Errorf("get role: %w", core.ErrNotFound)
	}
	return role, nil
}

func (f *fakeUserProvider) RecordLogin(_ context.Context, userID string) error {
	if f.logins == nil {
		f.logins = map[string]int{}
	}
	f.logins[userID]++
	return nil
}

type fakeTokenRepo struct {
	byHash map[string]*RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{byHash: map[string]*RefreshToken{}}
}

func (f *fakeTokenRepo) Create(_ context.Context, token *RefreshToken) error {
	token.CreatedAt = time.Now()
	f.byHash[token.TokenHash] = token
	return nil
}

func (f *fakeTokenRepo) FindByHash(
	_ context.Context,
	tokenHash string,
) (*RefreshToken, error) {
	token, ok := f.byHash[tokenHash]
	if !ok {
		return nil, fmt.Errorf("find refresh token: %w", core.ErrNotFound)
	}
	copied := *token
	return &copied, nil
}

func (f *fakeTokenRepo) MarkAsUsed(
	_ context.Context,
	id, replacedByID string,
) error {
	for _, token := range f.byHash {
		if token.ID == id {
			now := time.Now()
			token.IsUsed = true
			token.UsedAt = &now
			token.ReplacedByID = &replacedByID
			return nil
		}
	}
	return fmt.Errorf("mark refresh token as used: %w", core.ErrNotFound)
}

func (f *fakeTokenRepo) RevokeByFamilyID(
	_ context.Context,
	familyID string,
) error {
	now := time.Now()
	for _, token := range f.byHash {
		if token.FamilyID == familyID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokenRepo) RevokeAllForUser(
	_ context.Context,
	userID string,
) error {
	now := time.Now()
	for _, token := range f.byHash {
		if token.UserID == userID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokenRepo) ListActiveForUser(
	_ context.Context,
	userID string,
) ([]RefreshToken, error) {
	var out []RefreshToken
	for _, token := range f.byHash {
		if token.UserID == userID && token.IsValid() {
			out = append(out, *token)
		}
	}
	return out, nil
}

func (f *fakeTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	cutoff := time.Now().Add(-24 * time.Hour)

	var removed int64
	for hash, token := range f.byHash {
		if token.ExpiresAt.Before(cutoff) {
			delete(f.byHash, hash)
			removed++
		}
	}

	return removed, nil
}

type staticTenantPlans struct {
	levels map[string]subscription.Level
}

func (s *staticTenantPlans) ActiveLevel(
	_ context.Context,
	tenantID string,
) (subscription.Level, error) {
	level, ok := s.levels[tenantID]
	if !ok {
		return "", subscription.ErrNoActivePlan
	}
	return level, nil
}

type staticUserPlans struct {
	levels map[string]subscription.Level
}

func (s *staticUserPlans) PersonalLevel(
	_ context.Context,
	userID string,
) (subscription.Level, bool, error) {
	level, ok := s.levels[userID]
	return level, ok, nil
}

type serviceFixture struct {
	service  *Service
	provider *fakeUserProvider
	repo     *fakeTokenRepo
}

func newServiceFixture(
	t *testing.T,
	tenantLevels, userLevels map[string]subscription.Level,
) *serviceFixture {
	t.Helper()

	hash, err := core.HashPassword("correct horse battery")
	require.NoError(t, err)

	tenantID := "tenant-1"
	provider := &fakeUserProvider{
		byEmail: map[string]*UserInfo{
			"student@tenant.example": {
				ID:           "student-1",
				Email:        "student@tenant.example",
				TenantID:     &tenantID,
				PasswordHash: hash,
				IsActive:     true,
			},
			"indie@example.com": {
				ID:           "indie-1",
				Email:        "indie@example.com",
				PasswordHash: hash,
				IsActive:     true,
			},
			"disabled@example.com": {
				ID:           "disabled-1",
				Email:        "disabled@example.com",
				PasswordHash: hash,
				IsActive:     false,
			},
			"admin@example.com": {
				ID:           "admin-1",
				Email:        "admin@example.com",
				PasswordHash: hash,
				IsActive:     true,
			},
		},
		roles: map[string]*RoleInfo{
			"student-1":  {RoleType: subscription.RoleStudent, TenantID: &tenantID},
			"indie-1":    {RoleType: subscription.RoleStudent},
			"disabled-1": {RoleType: subscription.RoleStudent},
			"admin-1":    {RoleType: subscription.RoleTenantAdmin},
		},
	}

	resolver := subscription.NewResolver(
		&staticTenantPlans{levels: tenantLevels},
		&staticUserPlans{levels: userLevels},
		subscription.DefaultFeatureTable(),
	)

	jwtManager, err := NewJWTManager(testJWTConfig())
	require.NoError(t, err)

	repo := newFakeTokenRepo()

	return &serviceFixture{
		service: NewService(
			repo,
			jwtManager,
			provider,
			resolver,
			nil,
			15*time.Minute,
		),
		provider: provider,
		repo:     repo,
	}
}

func TestLoginIssuesResolvedTokens(t *testing.T) {
	fx := newServiceFixture(t,
		map[string]subscription.Level{"tenant-1": subscription.LevelPremium},
		nil,
	)

	resp, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "student@tenant.example",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	assert.Equal(t, subscription.LevelPremium, resp.User.Level)
	assert.Equal(t, subscription.RoleStudent, resp.User.Role)
	assert.Contains(t, resp.User.Plan.Features, "analytics")
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
	assert.Equal(t, 1, fx.provider.logins["student-1"])

	// The stored refresh token is hashed, never plaintext.
	hash := core.HashToken(resp.Tokens.RefreshToken)
	_, ok := fx.repo.byHash[hash]
	assert.True(t, ok)
	_, ok = fx.repo.byHash[resp.Tokens.RefreshToken]
	assert.False(t, ok)

	claims, err := fx.service.jwt.VerifyAccessToken(
		context.Background(),
		resp.Tokens.AccessToken,
	)
	require.NoError(t, err)
	assert.Equal(t, subscription.LevelPremium, claims.Level)
}

func TestLoginWrongPassword(t *testing.T) {
	fx := newServiceFixture(t, nil, nil)

	_, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "indie@example.com",
		Password: "wrong password here",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	fx := newServiceFixture(t, nil, nil)

	_, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct horse battery",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDisabledAccount(t *testing.T) {
	fx := newServiceFixture(t, nil, nil)

	_, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "disabled@example.com",
		Password: "correct horse battery",
	})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestLoginTenantAdminWithoutTenant(t *testing.T) {
	fx := newServiceFixture(t, nil, nil)

	_, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "admin@example.com",
		Password: "correct horse battery",
	})
	assert.ErrorIs(t, err, subscription.ErrMissingTenant)
}

func TestLoginFailsClosedWithoutTenantPlan(t *testing.T) {
	fx := newServiceFixture(t, nil, nil)

	_, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "student@tenant.example",
		Password: "correct horse battery",
	})
	assert.ErrorIs(t, err, subscription.ErrNoActivePlan)
}

func TestAccessTokenFormFlow(t *testing.T) {
	fx := newServiceFixture(t,
		nil,
		map[string]subscription.Level{"indie-1": subscription.LevelGold},
	)

	resp, err := fx.service.AccessToken(
		context.Background(),
		"indie@example.com",
		"correct horse battery",
	)
	require.NoError(t, err)

	assert.Equal(t, "bearer", resp.TokenType)

	claims, err := fx.service.jwt.VerifyAccessToken(
		context.Background(),
		resp.AccessToken,
	)
	require.NoError(t, err)
	assert.Equal(t, subscription.LevelGold, claims.Level)
	assert.Nil(t, claims.TenantID)
}

func TestRefreshRotatesAndDetectsReuse(t *testing.T) {
	fx := newServiceFixture(t,
		map[string]subscription.Level{"tenant-1": subscription.LevelGold},
		nil,
	)

	login, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "student@tenant.example",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	rotated, err := fx.service.Refresh(
		context.Background(),
		login.Tokens.RefreshToken,
	)
	require.NoError(t, err)
	assert.NotEqual(
		t,
		login.Tokens.RefreshToken,
		rotated.Tokens.RefreshToken,
	)

	// Replaying the consumed token burns the whole family.
	_, err = fx.service.Refresh(
		context.Background(),
		login.Tokens.RefreshToken,
	)
	assert.ErrorIs(t, err, ErrTokenReuse)

	_, err = fx.service.Refresh(
		context.Background(),
		rotated.Tokens.RefreshToken,
	)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestRefreshPicksUpPlanChanges(t *testing.T) {
	tenantLevels := map[string]subscription.Level{
		"tenant-1": subscription.LevelGold,
	}
	fx := newServiceFixture(t, tenantLevels, nil)

	login, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "student@tenant.example",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.Equal(t, subscription.LevelGold, login.User.Level)

	tenantLevels["tenant-1"] = subscription.LevelPro

	rotated, err := fx.service.Refresh(
		context.Background(),
		login.Tokens.RefreshToken,
	)
	require.NoError(t, err)
	assert.Equal(t, subscription.LevelPro, rotated.User.Level)
}

func TestRefreshUnknownToken(t *testing.T) {
	fx := newServiceFixture(t, nil, nil)

	_, err := fx.service.Refresh(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestLogoutRejectsForeignToken(t *testing.T) {
	fx := newServiceFixture(t,
		map[string]subscription.Level{"tenant-1": subscription.LevelGold},
		nil,
	)

	login, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "student@tenant.example",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	err = fx.service.Logout(
		context.Background(),
		login.Tokens.RefreshToken,
		"someone-else",
	)
	assert.ErrorIs(t, err, core.ErrForbidden)

	err = fx.service.Logout(
		context.Background(),
		login.Tokens.RefreshToken,
		"student-1",
	)
	assert.NoError(t, err)

	_, err = fx.service.Refresh(
		context.Background(),
		login.Tokens.RefreshToken,
	)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestSessionsTrackLoginAndLogout(t *testing.T) {
	fx := newServiceFixture(t,
		map[string]subscription.Level{"tenant-1": subscription.LevelGold},
		nil,
	)

	first, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "student@tenant.example",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	_, err = fx.service.Login(context.Background(), LoginRequest{
		Email:    "student@tenant.example",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	sessions, err := fx.service.Sessions(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, 2, sessions.Total)

	// Rotation replaces the token inside the family, so the session
	// count stays flat.
	_, err = fx.service.Refresh(
		context.Background(),
		first.Tokens.RefreshToken,
	)
	require.NoError(t, err)

	sessions, err = fx.service.Sessions(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, 2, sessions.Total)

	require.NoError(t, fx.service.LogoutAll(context.Background(), "student-1"))

	sessions, err = fx.service.Sessions(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, 0, sessions.Total)
}

func TestCleanupRemovesOnlyStaleTokens(t *testing.T) {
	fx := newServiceFixture(t,
		map[string]subscription.Level{"tenant-1": subscription.LevelGold},
		nil,
	)

	login, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "student@tenant.example",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	stale := &RefreshToken{
		ID:        "stale-1",
		UserID:    "student-1",
		TokenHash: core.HashToken("long gone"),
		FamilyID:  "family-stale",
		ExpiresAt: time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, fx.repo.Create(context.Background(), stale))

	removed, err := fx.service.CleanupExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	// The live session survives the sweep.
	_, ok := fx.repo.byHash[core.HashToken(login.Tokens.RefreshToken)]
	assert.True(t, ok)
	_, ok = fx.repo.byHash[stale.TokenHash]
	assert.False(t, ok)
}

// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/classpanel/classpanel/internal/core"
	"github.com/classpanel/classpanel/internal/middleware"
	"github.com/classpanel/classpanel/internal/subscription"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrTokenReuse         = errors.New("token reuse detected")
)

// UserInfo is the slice of the user record authentication needs.
type UserInfo struct {
	ID           string
	Email        string
	TenantID     *string
	PasswordHash string
	IsActive     bool
}

// RoleInfo is a user's role assignment, possibly scoped to a tenant.
type RoleInfo struct {
	RoleType subscription.RoleType
	TenantID *string
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	RoleOf(ctx context.Context, userID string) (*RoleInfo, error)
	RecordLogin(ctx context.Context, userID string) error
}

type Service struct {
	repo         Repository
	jwt          *JWTManager
	userProvider UserProvider
	resolver     *subscription.Resolver
	redis        *redis.Client
	accessExpire time.Duration
}

func NewService(
	repo Repository,
	jwtManager *JWTManager,
	userProvider UserProvider,
	resolver *subscription.Resolver,
	redisClient *redis.Client,
	accessExpire time.Duration,
) *Service {
	return &Service{
		repo:         repo,
		jwt:          jwtManager,
		userProvider: userProvider,
		resolver:     resolver,
		redis:        redisClient,
		accessExpire: accessExpire,
	}
}

// authorize checks credentials and resolves the caller's effective
// subscription access in one pass. Password verification runs even for
// unknown emails to keep response timing uniform.
func (s *Service) authorize(
	ctx context.Context,
	email, password string,
) (*UserInfo, *RoleInfo, *subscription.Access, error) {
	user, err := s.userProvider.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention
			_, _ = core.VerifyPasswordTimingSafe(password, nil)
			return nil, nil, nil, ErrInvalidCredentials
		}
		return nil, nil, nil, fmt.Errorf("get user: %w", err)
	}

	valid, err := core.VerifyPasswordTimingSafe(password, &user.PasswordHash)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, nil, ErrAccountDisabled
	}

	role, access, err := s.resolveAccess(ctx, user)
	if err != nil {
		return nil, nil, nil, err
	}

	return user, role, access, nil
}

func (s *Service) resolveAccess(
	ctx context.Context,
	user *UserInfo,
) (*RoleInfo, *subscription.Access, error) {
	role, err := s.userProvider.RoleOf(ctx, user.ID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil, fmt.Errorf(
				"user %s has no role: %w", user.ID, subscription.ErrUnknownRole,
			)
		}
		return nil, nil, fmt.Errorf("get role: %w", err)
	}

	tenantID := role.TenantID
	if tenantID == nil {
		tenantID = user.TenantID
	}

	access, err := s.resolver.Resolve(ctx, subscription.Subject{
		UserID:   user.ID,
		TenantID: tenantID,
		Role:     role.RoleType,
	})
	if err != nil {
		return nil, nil, err
	}

	return role, access, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	user, role, access, err := s.authorize(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	//nolint:errcheck // login proceeds even if the timestamp write fails
	_ = s.userProvider.RecordLogin(ctx, user.ID)

	return s.createAuthResponse(ctx, user, role, access, "", nil)
}

// AccessToken implements the OAuth2 password form flow: credentials in,
// a bare bearer token out. No refresh token is issued on this path.
func (s *Service) AccessToken(
	ctx context.Context,
	email, password string,
) (*AccessTokenResponse, error) {
	user, role, access, err := s.authorize(ctx, email, password)
	if err != nil {
		return nil, err
	}

	//nolint:errcheck // login proceeds even if the timestamp write fails
	_ = s.userProvider.RecordLogin(ctx, user.ID)

	token, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:      user.ID,
		TenantID:    subjectTenant(user, role),
		Role:        role.RoleType,
		Level:       access.Level,
		Entitlement: access.Entitlement,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &AccessTokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}

func (s *Service) Refresh(
	ctx context.Context,
	refreshToken string,
) (*AuthResponse, error) {
	tokenHash := core.HashToken(refreshToken)

	storedToken, err := s.repo.FindByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	if storedToken.IsUsed {
		//nolint:errcheck // security revocation continues regardless
		_ = s.repo.RevokeByFamilyID(ctx, storedToken.FamilyID)
		return nil, ErrTokenReuse
	}

	if !storedToken.IsValid() {
		if storedToken.IsRevoked() {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	user, err := s.userProvider.GetByID(ctx, storedToken.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	// Plans may have changed since login; resolve fresh rather than
	// trusting the old token's level.
	role, access, err := s.resolveAccess(ctx, user)
	if err != nil {
		return nil, err
	}

	return s.createAuthResponse(
		ctx,
		user,
		role,
		access,
		storedToken.FamilyID,
		&storedToken.ID,
	)
}

func (s *Service) Logout(
	ctx context.Context,
	refreshToken, userID string,
) error {
	tokenHash := core.HashToken(refreshToken)

	storedToken, err := s.repo.FindByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("find token: %w", err)
	}

	if storedToken.UserID != userID {
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	}

	if err := s.repo.RevokeByFamilyID(ctx, storedToken.FamilyID); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	return nil
}

func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.repo.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}

	return nil
}

// Sessions lists the caller's open refresh-token sessions.
func (s *Service) Sessions(
	ctx context.Context,
	userID string,
) (*SessionListResponse, error) {
	tokens, err := s.repo.ListActiveForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]SessionResponse, 0, len(tokens))
	for i := range tokens {
		sessions = append(sessions, SessionResponse{
			ID:        tokens[i].ID,
			FamilyID:  tokens[i].FamilyID,
			CreatedAt: tokens[i].CreatedAt,
			ExpiresAt: tokens[i].ExpiresAt,
		})
	}

	return &SessionListResponse{
		Sessions: sessions,
		Total:    len(sessions),
	}, nil
}

// CleanupExpiredTokens removes refresh tokens past their retention
// window. Run periodically; rotation and revocation only flag rows.
func (s *Service) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired tokens: %w", err)
	}

	return removed, nil
}

func (s *Service) RevokeAccessToken(
	ctx context.Context,
	jti string,
	expiresAt time.Time,
) error {
	key := "blacklist:" + jti
	ttl := time.Until(expiresAt)

	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

func (s *Service) IsAccessTokenBlacklisted(
	ctx context.Context,
	jti string,
) (bool, error) {
	key := "blacklist:" + jti

	exists, err := s.redis.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}

	return exists > 0, nil
}

// VerifyAccessToken satisfies middleware.TokenVerifier: signature check
// plus the revocation blacklist.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	blacklisted, err := s.IsAccessTokenBlacklisted(ctx, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	return claims, nil
}

func (s *Service) CurrentUser(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) (*SessionUser, error) {
	user, err := s.userProvider.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return &SessionUser{
		ID:       user.ID,
		Email:    user.Email,
		TenantID: claims.TenantID,
		Role:     claims.Role,
		Level:    claims.Level,
		Plan:     claims.Entitlement,
	}, nil
}

func subjectTenant(user *UserInfo, role *RoleInfo) *string {
	if role.TenantID != nil {
		return role.TenantID
	}
	return user.TenantID
}

func (s *Service) createAuthResponse(
	ctx context.Context,
	user *UserInfo,
	role *RoleInfo,
	access *subscription.Access,
	familyID string,
	oldTokenID *string,
) (*AuthResponse, error) {
	tenantID := subjectTenant(user, role)

	accessToken, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:      user.ID,
		TenantID:    tenantID,
		Role:        role.RoleType,
		Level:       access.Level,
		Entitlement: access.Entitlement,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refreshData, err := s.jwt.CreateRefreshToken(user.ID, familyID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	newTokenID := uuid.New().String()

	refreshTokenEntity := &RefreshToken{
		ID:        newTokenID,
		UserID:    user.ID,
		TokenHash: refreshData.Hash,
		FamilyID:  refreshData.FamilyID,
		ExpiresAt: refreshData.ExpiresAt,
	}

	if err := s.repo.Create(ctx, refreshTokenEntity); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	if oldTokenID != nil {
		//nolint:errcheck // best-effort token chain tracking
		_ = s.repo.MarkAsUsed(ctx, *oldTokenID, newTokenID)
	}

	return &AuthResponse{
		User: SessionUser{
			ID:       user.ID,
			Email:    user.Email,
			TenantID: tenantID,
			Role:     role.RoleType,
			Level:    access.Level,
			Plan:     access.Entitlement,
		},
		Tokens: TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshData.Token,
			TokenType:    "Bearer",
			ExpiresIn:    int(s.accessExpire / time.Second),
			ExpiresAt:    time.Now().Add(s.accessExpire),
		},
	}, nil
}

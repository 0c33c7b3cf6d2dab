// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/classpanel/classpanel/internal/config"
	"github.com/classpanel/classpanel/internal/core"
	"github.com/classpanel/classpanel/internal/middleware"
	"github.com/classpanel/classpanel/internal/subscription"
)

type JWTManager struct {
	signingKey jwk.Key
	config     config.JWTConfig
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	signingKey, err := jwk.Import([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("import signing key: %w", err)
	}

	if setErr := signingKey.Set(jwk.AlgorithmKey, jwa.HS256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	return &JWTManager{
		signingKey: signingKey,
		config:     cfg,
	}, nil
}

// AccessTokenClaims is the authorization payload embedded in every access
// token. Entitlement is the resolved feature set for Level, so downstream
// services never consult the plan tables themselves.
type AccessTokenClaims struct {
	UserID      string
	TenantID    *string
	Role        subscription.RoleType
	Level       subscription.Level
	Entitlement subscription.Entitlement
}

func (m *JWTManager) CreateAccessToken(
	claims AccessTokenClaims,
) (string, error) {
	now := time.Now()

	builder := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(m.config.Issuer).
		Audience([]string{m.config.Audience}).
		Subject(claims.UserID).
		IssuedAt(now).
		Expiration(now.Add(m.config.AccessTokenExpire)).
		NotBefore(now).
		Claim("role", string(claims.Role)).
		Claim("sub_level", string(claims.Level)).
		Claim("sub_plan", claims.Entitlement).
		Claim("type", "access")

	if claims.TenantID != nil {
		builder = builder.Claim("tenant_id", *claims.TenantID)
	}

	token, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.signingKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

func (m *JWTManager) VerifyAccessToken(
	ctx context.Context,
	tokenString string,
) (*middleware.AccessTokenClaims, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), m.signingKey),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	var tokenType string
	if err := token.Get("type", &tokenType); err != nil ||
		tokenType != "access" {
		return nil, fmt.Errorf(
			"verify token: invalid token type: %w",
			core.ErrTokenInvalid,
		)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	tokenID, ok := token.JwtID()
	if !ok || tokenID == "" {
		return nil, fmt.Errorf(
			"verify token: missing token id: %w",
			core.ErrTokenInvalid,
		)
	}

	var roleStr string
	if err := token.Get("role", &roleStr); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing role claim: %w",
			core.ErrTokenInvalid,
		)
	}
	role := subscription.RoleType(roleStr)
	if !role.Valid() {
		return nil, fmt.Errorf(
			"verify token: unknown role %q: %w",
			roleStr,
			core.ErrTokenInvalid,
		)
	}

	var levelStr string
	if err := token.Get("sub_level", &levelStr); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing sub_level claim: %w",
			core.ErrTokenInvalid,
		)
	}
	level := subscription.Level(levelStr)
	if !level.Valid() {
		return nil, fmt.Errorf(
			"verify token: unknown sub_level %q: %w",
			levelStr,
			core.ErrTokenInvalid,
		)
	}

	entitlement, err := entitlementClaim(token)
	if err != nil {
		return nil, err
	}

	var tenantID *string
	var tenantStr string
	if err := token.Get("tenant_id", &tenantStr); err == nil &&
		tenantStr != "" {
		tenantID = &tenantStr
	}

	expiration, _ := token.Expiration()

	return &middleware.AccessTokenClaims{
		TokenID:     tokenID,
		UserID:      subject,
		TenantID:    tenantID,
		Role:        role,
		Level:       level,
		Entitlement: entitlement,
		ExpiresAt:   expiration,
	}, nil
}

// entitlementClaim re-decodes the sub_plan object through JSON since jwx
// surfaces nested claims as map[string]any.
func entitlementClaim(token jwt.Token) (subscription.Entitlement, error) {
	var raw map[string]any
	if err := token.Get("sub_plan", &raw); err != nil {
		return subscription.Entitlement{}, fmt.Errorf(
			"verify token: missing sub_plan claim: %w",
			core.ErrTokenInvalid,
		)
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return subscription.Entitlement{}, fmt.Errorf(
			"verify token: encode sub_plan claim: %w",
			core.ErrTokenInvalid,
		)
	}

	var entitlement subscription.Entitlement
	if err := json.Unmarshal(encoded, &entitlement); err != nil {
		return subscription.Entitlement{}, fmt.Errorf(
			"verify token: decode sub_plan claim: %w",
			core.ErrTokenInvalid,
		)
	}

	return entitlement, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}

type RefreshTokenData struct {
	Token     string
	Hash      string
	ExpiresAt time.Time
	FamilyID  string
}

func (m *JWTManager) CreateRefreshToken(
	userID, familyID string,
) (*RefreshTokenData, error) {
	token, err := core.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	hash := core.HashToken(token)
	expiresAt := time.Now().Add(m.config.RefreshTokenExpire)

	if familyID == "" {
		familyID = uuid.New().String()
	}

	return &RefreshTokenData{
		Token:     token,
		Hash:      hash,
		ExpiresAt: expiresAt,
		FamilyID:  familyID,
	}, nil
}

func (m *JWTManager) VerifyRefreshTokenHash(token, storedHash string) bool {
	return core.CompareTokenHash(token, storedHash)
}

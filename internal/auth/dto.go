// AngelaMos | 2026
// dto.go

package auth

import (
	"time"

	"github.com/classpanel/classpanel/internal/subscription"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AccessTokenResponse is the OAuth2 password-flow shape returned by
// POST /login/access-token.
type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type SessionUser struct {
	ID       string                   `json:"id"`
	Email    string                   `json:"email"`
	TenantID *string                  `json:"tenant_id,omitempty"`
	Role     subscription.RoleType    `json:"role"`
	Level    subscription.Level       `json:"level"`
	Plan     subscription.Entitlement `json:"plan"`
}

type AuthResponse struct {
	User   SessionUser   `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

// SessionResponse describes one open refresh-token session. The token
// itself is never returned, only its family metadata.
type SessionResponse struct {
	ID        string    `json:"id"`
	FamilyID  string    `json:"family_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Total    int               `json:"total"`
}

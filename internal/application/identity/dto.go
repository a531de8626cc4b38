package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/identity"
)

// RegisterInput creates a user, and the tenant itself when TenantName is set
// and the tenant does not exist yet
type RegisterInput struct {
	TenantName string
	Username   string
	Email      string
	Password   string
}

// LoginInput contains the credentials for a login
type LoginInput struct {
	Username string
	Password string
}

// AuthResult is returned by register and login
type AuthResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	SessionID   string
	SessionTTL  time.Duration
	User        UserInfo
}

// UserInfo describes the authenticated user
type UserInfo struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Username    string
	Email       string
	Roles       []string
	Permissions []identity.Permission
}

// LogoutInput identifies the token and session to revoke
type LogoutInput struct {
	TokenID   string
	TokenTTL  time.Duration
	SessionID string
}

// TenantSignals are the request facts the tenant can be derived from
type TenantSignals struct {
	// Onboarding is set on register and login, the only routes that trust a
	// tenant id carried in the request body
	Onboarding bool
	BodyTenant string
	Header     string
	Principal  identity.Principal
	SessionID  string
}

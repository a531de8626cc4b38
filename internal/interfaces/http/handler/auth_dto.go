package handler

import (
	"time"

	"github.com/google/uuid"
	appidentity "github.com/storeline/backend/internal/application/identity"
	"github.com/storeline/backend/internal/domain/identity"
)

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	TenantID   string `json:"tenant_id" binding:"required,uuid"`
	TenantName string `json:"tenant_name" binding:"max=200"`
	Username   string `json:"username" binding:"required,min=3,max=64"`
	Email      string `json:"email" binding:"omitempty,email,max=200"`
	Password   string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	TenantID string `json:"tenant_id" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse describes the authenticated user
type UserResponse struct {
	ID          uuid.UUID             `json:"id"`
	TenantID    uuid.UUID             `json:"tenant_id"`
	Username    string                `json:"username"`
	Email       string                `json:"email,omitempty"`
	Roles       []string              `json:"roles"`
	Permissions []identity.Permission `json:"permissions"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// TenantResponse is the body of GET /tenant. Name and creation time are
// only returned to authenticated callers.
type TenantResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func toUserResponse(u appidentity.UserInfo) UserResponse {
	return UserResponse{
		ID:          u.ID,
		TenantID:    u.TenantID,
		Username:    u.Username,
		Email:       u.Email,
		Roles:       u.Roles,
		Permissions: u.Permissions,
	}
}

func toAuthResponse(r *appidentity.AuthResult) AuthResponse {
	return AuthResponse{
		AccessToken: r.AccessToken,
		TokenType:   r.TokenType,
		ExpiresAt:   r.ExpiresAt,
		User:        toUserResponse(r.User),
	}
}

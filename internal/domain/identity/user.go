package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusDeactivated UserStatus = "deactivated"
)

// PasswordCost is the bcrypt cost used for new hashes. Tests lower it.
var PasswordCost = 12

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// User is a principal belonging to exactly one tenant.
type User struct {
	shared.TenantEntity
	Username     string     `gorm:"size:100;not null;index"`
	Email        string     `gorm:"size:200"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Status       UserStatus `gorm:"size:20;not null;default:active"`
	LastLoginAt  *time.Time
	Roles        []Role `gorm:"many2many:user_roles;joinForeignKey:UserID;joinReferences:RoleID"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates an active user in the given tenant
func NewUser(tenantID uuid.UUID, username, email, password string) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if email != "" && !emailPattern.MatchString(email) {
		return nil, shared.Invalid("Invalid email format")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	// Username uniqueness is per tenant; the database index (tenant_id, username) enforces it.
	return &User{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Username:     strings.ToLower(strings.TrimSpace(username)),
		Email:        email,
		PasswordHash: string(hash),
		Status:       UserStatusActive,
	}, nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// CanLogin reports whether the user may authenticate
func (u *User) CanLogin() bool {
	return u.Status == UserStatusActive
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
}

// RoleNames returns the names of the loaded roles
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Principal returns the user as an authorization principal
func (u *User) Principal() Principal {
	return StaticPrincipal{User: u.ID, Tenant: u.TenantID}
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return shared.Invalid("Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.Invalid("Username cannot exceed 100 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.Invalid("Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.Invalid("Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.Invalid("Password cannot exceed 72 characters")
	}
	return nil
}

package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/application/uow"
	"github.com/storeline/backend/internal/domain/identity"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/infrastructure/auth"
	"github.com/storeline/backend/internal/infrastructure/logger"
	"github.com/storeline/backend/internal/infrastructure/session"
	"go.uber.org/zap"
)

var errInvalidCredentials = shared.Detailed(shared.ErrUnauthorized, "Invalid username or password")

// AuthService handles registration, login and logout
type AuthService struct {
	uow       uow.UnitOfWork
	guard     *PermissionGuard
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	sessions  session.Store
	ttl       time.Duration
	now       func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	unit uow.UnitOfWork,
	guard *PermissionGuard,
	jwt *auth.JWTService,
	blacklist auth.TokenBlacklist,
	sessions session.Store,
	sessionTTL time.Duration,
) *AuthService {
	return &AuthService{
		uow:       unit,
		guard:     guard,
		jwt:       jwt,
		blacklist: blacklist,
		sessions:  sessions,
		ttl:       sessionTTL,
		now:       time.Now,
	}
}

// Register creates a user in tc. When the tenant does not exist yet it is
// created from TenantName and the user becomes its admin. Users joining an
// existing tenant start without roles until an admin grants them.
func (s *AuthService) Register(ctx context.Context, tc shared.TenantContext, in RegisterInput) (*AuthResult, error) {
	log := logger.FromContext(ctx).With(zap.String("tenant_id", tc.String()), zap.String("username", in.Username))

	var user *identity.User
	err := s.uow.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		exists, err := repos.Tenants().Exists(ctx, tc.TenantID())
		if err != nil {
			return err
		}
		var roles []string
		if !exists {
			if strings.TrimSpace(in.TenantName) == "" {
				return shared.Invalid("Tenant name is required to create a tenant")
			}
			t, err := identity.NewTenant(tc.TenantID(), in.TenantName)
			if err != nil {
				return err
			}
			if err := repos.Tenants().Create(ctx, t); err != nil {
				return err
			}
			roles = append(roles, identity.RoleAdmin)
		}

		taken, err := repos.Users().ExistsByUsername(ctx, in.Username)
		if err != nil {
			return err
		}
		if taken {
			return shared.Conflict("Username is already taken")
		}

		u, err := identity.NewUser(tc.TenantID(), in.Username, in.Email, in.Password)
		if err != nil {
			return err
		}
		if err := repos.Users().Create(ctx, u); err != nil {
			return err
		}
		if len(roles) > 0 {
			if err := repos.Users().AssignRoles(ctx, u.ID, roles...); err != nil {
				return err
			}
		}
		for _, name := range roles {
			u.Roles = append(u.Roles, identity.Role{Name: name, GuardName: identity.GuardAPI})
		}
		user = u
		return nil
	})
	if err != nil {
		log.Warn("Registration failed", zap.Error(err))
		return nil, err
	}

	log.Info("User registered", zap.String("user_id", user.ID.String()), zap.Strings("roles", user.RoleNames()))
	return s.startSession(ctx, tc, user)
}

// Login verifies credentials within tc and starts a session
func (s *AuthService) Login(ctx context.Context, tc shared.TenantContext, in LoginInput) (*AuthResult, error) {
	log := logger.FromContext(ctx).With(zap.String("tenant_id", tc.String()), zap.String("username", in.Username))
	log.Debug("Login attempt")

	var user *identity.User
	err := s.uow.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		u, err := repos.Users().FindByUsername(ctx, in.Username)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return errInvalidCredentials
			}
			return err
		}
		if !u.VerifyPassword(in.Password) || !u.CanLogin() {
			return errInvalidCredentials
		}
		u.RecordLogin(s.now())
		if err := repos.Users().RecordLogin(ctx, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			log.Warn("Login rejected")
		} else {
			log.Error("Login failed", zap.Error(err))
		}
		return nil, err
	}

	log.Info("User logged in", zap.String("user_id", user.ID.String()))
	return s.startSession(ctx, tc, user)
}

func (s *AuthService) startSession(ctx context.Context, tc shared.TenantContext, user *identity.User) (*AuthResult, error) {
	sess, err := session.New(tc.TenantID(), user.ID, s.ttl)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	token, err := s.jwt.Issue(user, sess.ID)
	if err != nil {
		_ = s.sessions.Delete(ctx, sess.ID)
		return nil, err
	}
	perms, err := s.guard.Permissions(ctx, tc, user.Principal())
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		SessionID:   sess.ID,
		SessionTTL:  s.ttl,
		User:        userInfo(user, perms),
	}, nil
}

// Logout revokes the access token for the rest of its lifetime and ends the session
func (s *AuthService) Logout(ctx context.Context, in LogoutInput) error {
	log := logger.FromContext(ctx)
	if in.TokenID != "" && in.TokenTTL > 0 {
		if err := s.blacklist.Revoke(ctx, in.TokenID, in.TokenTTL); err != nil {
			log.Error("Failed to revoke token", zap.Error(err))
			return err
		}
	}
	if in.SessionID != "" {
		if err := s.sessions.Delete(ctx, in.SessionID); err != nil && !errors.Is(err, session.ErrNotFound) {
			log.Error("Failed to delete session", zap.Error(err))
			return err
		}
	}
	log.Info("User logged out")
	return nil
}

// Me returns the principal's profile and effective permissions in tc
func (s *AuthService) Me(ctx context.Context, tc shared.TenantContext, principal identity.Principal) (*UserInfo, error) {
	if principal.TenantID() != tc.TenantID() {
		return nil, shared.ErrPermissionDenied
	}
	var user *identity.User
	err := s.uow.Read(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		u, err := repos.Users().FindByID(ctx, principal.UserID())
		user = u
		return err
	})
	if err != nil {
		return nil, err
	}
	perms, err := s.guard.Permissions(ctx, tc, principal)
	if err != nil {
		return nil, err
	}
	info := userInfo(user, perms)
	return &info, nil
}

func userInfo(u *identity.User, perms []identity.Permission) UserInfo {
	if perms == nil {
		perms = []identity.Permission{}
	}
	return UserInfo{
		ID:          u.ID,
		TenantID:    u.TenantID,
		Username:    u.Username,
		Email:       u.Email,
		Roles:       u.RoleNames(),
		Permissions: perms,
	}
}

// TenantService reads tenant details
type TenantService struct {
	tenants identity.TenantRepository
}

// NewTenantService creates a new TenantService
func NewTenantService(tenants identity.TenantRepository) *TenantService {
	return &TenantService{tenants: tenants}
}

// TenantInfo is the public view of a tenant
type TenantInfo struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Get returns the tenant of tc
func (s *TenantService) Get(ctx context.Context, tc shared.TenantContext) (*TenantInfo, error) {
	t, err := s.tenants.FindByID(ctx, tc.TenantID())
	if err != nil {
		return nil, err
	}
	return &TenantInfo{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt}, nil
}

package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/identity"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/infrastructure/logger"
	"github.com/storeline/backend/internal/infrastructure/session"
	"go.uber.org/zap"
)

// SessionReader looks up server-side sessions
type SessionReader interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// TenantResolver derives the TenantContext of a request. The first present
// signal wins: onboarding body, X-Tenant-ID header, authenticated principal,
// session. A malformed signal fails instead of falling through.
type TenantResolver struct {
	tenants  identity.TenantRepository
	sessions SessionReader
}

// NewTenantResolver creates a resolver
func NewTenantResolver(tenants identity.TenantRepository, sessions SessionReader) *TenantResolver {
	return &TenantResolver{tenants: tenants, sessions: sessions}
}

// Resolve returns the tenant for the signals or shared.ErrTenantNotIdentified
func (r *TenantResolver) Resolve(ctx context.Context, s TenantSignals) (shared.TenantContext, error) {
	log := logger.FromContext(ctx)

	if s.Onboarding && strings.TrimSpace(s.BodyTenant) != "" {
		id, err := uuid.Parse(strings.TrimSpace(s.BodyTenant))
		if err != nil {
			log.Warn("Malformed onboarding tenant id", zap.String("tenant_id", s.BodyTenant))
			return shared.TenantContext{}, shared.ErrTenantNotIdentified
		}
		// register may be about to create this tenant, so existence is not required
		return shared.NewTenantContext(id, shared.TenantSourceOnboarding)
	}

	if h := strings.TrimSpace(s.Header); h != "" {
		id, err := uuid.Parse(h)
		if err != nil {
			log.Warn("Malformed X-Tenant-ID header", zap.String("header", h))
			return shared.TenantContext{}, shared.ErrTenantNotIdentified
		}
		if s.Principal != nil && s.Principal.TenantID() != id {
			// the permission guard rejects the mismatch; resolution itself succeeds
			log.Warn("Tenant header differs from principal tenant",
				zap.String("header_tenant", id.String()),
				zap.String("principal_tenant", s.Principal.TenantID().String()),
			)
		}
		return r.existing(ctx, id, shared.TenantSourceHeader)
	}

	if s.Principal != nil {
		return r.existing(ctx, s.Principal.TenantID(), shared.TenantSourcePrincipal)
	}

	if s.SessionID != "" && r.sessions != nil {
		sess, err := r.sessions.Get(ctx, s.SessionID)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				log.Error("Session lookup failed", zap.Error(err))
			}
			return shared.TenantContext{}, shared.ErrTenantNotIdentified
		}
		return r.existing(ctx, sess.TenantID, shared.TenantSourceSession)
	}

	return shared.TenantContext{}, shared.ErrTenantNotIdentified
}

func (r *TenantResolver) existing(ctx context.Context, id uuid.UUID, source shared.TenantSource) (shared.TenantContext, error) {
	if id == uuid.Nil {
		return shared.TenantContext{}, shared.ErrTenantNotIdentified
	}
	ok, err := r.tenants.Exists(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("Tenant lookup failed", zap.Error(err))
		return shared.TenantContext{}, shared.ErrTenantNotIdentified
	}
	if !ok {
		logger.FromContext(ctx).Warn("Unknown tenant", zap.String("tenant_id", id.String()), zap.String("source", string(source)))
		return shared.TenantContext{}, shared.ErrTenantNotIdentified
	}
	return shared.NewTenantContext(id, source)
}

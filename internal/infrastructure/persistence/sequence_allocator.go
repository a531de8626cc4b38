package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/domain/trade"
	"github.com/storeline/backend/internal/infrastructure/config"
	"github.com/storeline/backend/internal/infrastructure/logger"
	"github.com/storeline/backend/internal/infrastructure/persistence/tenant"
	"go.uber.org/zap"
)

// nextValueSQL increments and returns the counter in one statement. The
// conflicting row stays locked until the caller's transaction ends, which
// serializes concurrent allocators for the same tenant, kind and day.
const nextValueSQL = `INSERT INTO document_sequences (tenant_id, document_kind, day, value, updated_at)
VALUES (?, ?, ?, 1, ?)
ON CONFLICT (tenant_id, document_kind, day)
DO UPDATE SET value = document_sequences.value + 1, updated_at = excluded.updated_at
RETURNING value`

// RetryObserver is told about every failed attempt that will be retried
type RetryObserver func(ctx context.Context, kind trade.DocumentKind, attempt int, err error)

// SequenceAllocator issues PREFIX-YYYYMMDD-NNNN numbers for the scope's tenant
type SequenceAllocator struct {
	scope    *tenant.Scope
	cfg      config.SequenceConfig
	observer RetryObserver
}

var _ trade.SequenceAllocator = (*SequenceAllocator)(nil)

// NewSequenceAllocator binds an allocator to scope. Pass a transactional
// scope so the number is released if the document fails to persist.
func NewSequenceAllocator(scope *tenant.Scope, cfg config.SequenceConfig, observer RetryObserver) *SequenceAllocator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &SequenceAllocator{scope: scope, cfg: cfg, observer: observer}
}

// Next returns the next number for kind on day. Each attempt runs in its own
// savepoint; serialization failures, deadlocks, lock timeouts, unique
// violations and SQLite busy errors are retried with exponential backoff.
func (a *SequenceAllocator) Next(ctx context.Context, kind trade.DocumentKind, day time.Time) (string, error) {
	if !kind.IsValid() {
		return "", shared.Invalid(fmt.Sprintf("unknown document kind %q", kind))
	}

	var value int64
	attempt := 0
	op := func() error {
		attempt++
		err := a.scope.Transaction(ctx, func(tx *tenant.Scope) error {
			return tx.Raw(ctx).
				Raw(nextValueSQL, tx.TenantID(), string(kind), trade.DayKey(day), time.Now().UTC()).
				Scan(&value).Error
		})
		if err == nil {
			return nil
		}
		if !isRetryableAllocation(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.FromContext(ctx).Warn("Document number allocation retry",
			zap.String("kind", string(kind)),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		if a.observer != nil {
			a.observer(ctx, kind, attempt, err)
		}
	}

	if err := backoff.RetryNotify(op, a.policy(ctx), notify); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("allocate %s number: %w", kind, ctx.Err())
		}
		if isRetryableAllocation(err) {
			logger.FromContext(ctx).Error("Document number allocation exhausted retries",
				zap.String("kind", string(kind)),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			return "", fmt.Errorf("%w: %s after %d attempts: %v", shared.ErrSequenceAllocationFailed, kind, attempt, err)
		}
		return "", fmt.Errorf("allocate %s number: %w", kind, err)
	}
	return trade.FormatDocumentNumber(kind, day, value), nil
}

func (a *SequenceAllocator) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if a.cfg.InitialBackoff > 0 {
		b.InitialInterval = a.cfg.InitialBackoff
	}
	if a.cfg.MaxBackoff > 0 {
		b.MaxInterval = a.cfg.MaxBackoff
	}
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(a.cfg.MaxAttempts-1)), ctx)
}

// PostgreSQL SQLSTATEs worth another attempt
var retryablePgCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"23505": true, // unique_violation on a racing first insert
}

func isRetryableAllocation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return retryablePgCodes[pgErr.Code]
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}

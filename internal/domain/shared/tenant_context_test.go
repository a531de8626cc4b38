package shared

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTenantContext(t *testing.T) {
	t.Run("rejects nil tenant", func(t *testing.T) {
		tc, err := NewTenantContext(uuid.Nil, TenantSourceHeader)
		assert.ErrorIs(t, err, ErrTenantNotIdentified)
		assert.True(t, tc.IsZero())
	})

	t.Run("keeps id and source", func(t *testing.T) {
		id := uuid.New()
		tc, err := NewTenantContext(id, TenantSourcePrincipal)
		require.NoError(t, err)
		assert.Equal(t, id, tc.TenantID())
		assert.Equal(t, TenantSourcePrincipal, tc.Source())
		assert.Equal(t, id.String(), tc.String())
	})
}

func TestTenantContextFrom(t *testing.T) {
	_, ok := TenantContextFrom(context.Background())
	assert.False(t, ok)

	tc := MustTenantContext(uuid.New(), TenantSourceSystem)
	ctx := WithTenantContext(context.Background(), tc)
	got, ok := TenantContextFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, tc, got)

	// a zero value stored in the context is treated as absent
	ctx = WithTenantContext(context.Background(), TenantContext{})
	_, ok = TenantContextFrom(ctx)
	assert.False(t, ok)
}

func TestConcurrentRequestsKeepTheirOwnTenant(t *testing.T) {
	a := MustTenantContext(uuid.New(), TenantSourceHeader)
	b := MustTenantContext(uuid.New(), TenantSourceHeader)
	ctxA := WithTenantContext(context.Background(), a)
	ctxB := WithTenantContext(context.Background(), b)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			got, _ := TenantContextFrom(ctxB)
			assert.Equal(t, b.TenantID(), got.TenantID())
		}
	}()
	for i := 0; i < 1000; i++ {
		got, _ := TenantContextFrom(ctxA)
		assert.Equal(t, a.TenantID(), got.TenantID())
	}
	<-done
}

func TestInvalid(t *testing.T) {
	err := Invalid("quantity must be positive")
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "quantity must be positive", err.Error())
	assert.Equal(t, "INVALID_INPUT", CodeOf(err))

	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "quantity must be positive", de.Message)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "PERMISSION_DENIED", CodeOf(ErrPermissionDenied))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
}

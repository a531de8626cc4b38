package partner

import (
	"errors"
	"testing"

	"github.com/storeline/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSupplier(t *testing.T) {
	s, err := NewSupplier(SupplierInput{Name: " Acme Pharma ", Email: "orders@acme.test"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Pharma", s.Name)

	_, err = NewSupplier(SupplierInput{Name: ""})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewSupplier(SupplierInput{Name: "Acme", Email: "nope"})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestSupplierUpdate(t *testing.T) {
	s, err := NewSupplier(SupplierInput{Name: "Acme"})
	require.NoError(t, err)
	require.NoError(t, s.Update(SupplierInput{Name: "Acme Ltd", Phone: " 555 "}))
	assert.Equal(t, "Acme Ltd", s.Name)
	assert.Equal(t, "555", s.Phone)
	assert.Error(t, s.Update(SupplierInput{}))
	assert.Equal(t, "Acme Ltd", s.Name)
}

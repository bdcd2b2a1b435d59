package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, KeyCart)
	assert.ErrorIs(t, err, ErrNotFound)

	in := []byte(`[]`)
	require.NoError(t, m.Set(ctx, KeyCart, in))
	in[0] = 'x' // caller buffer must not leak into the slot

	got, err := m.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	require.NoError(t, m.Delete(ctx, KeyCart))
	require.NoError(t, m.Delete(ctx, KeyCart))
	_, err = m.Get(ctx, KeyCart)
	assert.ErrorIs(t, err, ErrNotFound)
}

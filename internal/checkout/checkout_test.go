package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/Makepad-fr/bookshop/internal/cart"
	"github.com/Makepad-fr/bookshop/internal/model"
	"github.com/Makepad-fr/bookshop/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledCart(t *testing.T) (*cart.Store, store.Slot) {
	ctx := context.Background()
	slot := store.NewMemory()
	c := cart.Open(ctx, slot, nil)
	require.NoError(t, c.Add(ctx, model.Book{ID: 1, Title: "A", Price: 10}))
	require.NoError(t, c.Add(ctx, model.Book{ID: 1, Title: "A", Price: 10}))
	require.NoError(t, c.Add(ctx, model.Book{ID: 2, Title: "B", Price: 2.5}))
	return c, slot
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyKeep, p)

	p, err = ParsePolicy("clear")
	require.NoError(t, err)
	assert.Equal(t, PolicyClear, p)

	_, err = ParsePolicy("burn")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestPay_KeepsCart(t *testing.T) {
	c, _ := filledCart(t)
	s := NewService(c, PolicyKeep, nil)
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	s.rand = func(int) int { return 42 }

	r, err := s.Pay(context.Background())
	require.NoError(t, err)

	_, err = uuid.Parse(r.ID)
	assert.NoError(t, err)
	assert.Equal(t, "paypal-000042", r.Account)
	assert.InDelta(t, 22.5, r.Amount, 1e-9)
	assert.Equal(t, 3, r.Items)
	assert.False(t, r.Cleared)
	assert.Equal(t, fixed, r.CreatedAt)
	assert.Equal(t, 2, c.Len())
}

func TestPay_ClearPolicy(t *testing.T) {
	c, slot := filledCart(t)
	s := NewService(c, PolicyClear, nil)

	r, err := s.Pay(context.Background())
	require.NoError(t, err)
	assert.True(t, r.Cleared)
	assert.Zero(t, c.Len())

	data, err := slot.Get(context.Background(), store.KeyCart)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestPay_EmptyCart(t *testing.T) {
	c := cart.Open(context.Background(), store.NewMemory(), nil)
	s := NewService(c, "", nil)
	assert.Equal(t, PolicyKeep, s.Policy())

	_, err := s.Pay(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

package tui

import (
	"context"
	"testing"
	"time"

	"github.com/Makepad-fr/bookshop/internal/app"
	"github.com/Makepad-fr/bookshop/internal/auth"
	"github.com/Makepad-fr/bookshop/internal/config"
	"github.com/Makepad-fr/bookshop/internal/store"
	"github.com/Makepad-fr/bookshop/internal/store/jsonstore"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, session *auth.Session) (Model, *app.Shop) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendMemory
	shop, err := app.New(context.Background(), cfg, store.NewMemory(), nil, nil)
	require.NoError(t, err)
	return New(context.Background(), shop, session, nil), shop
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
)

func typeText(t *testing.T, m Model, s string) Model {
	for _, r := range s {
		m = press(t, m, runes(string(r)))
	}
	return m
}

func TestBuyAndRemove(t *testing.T) {
	m, shop := newTestModel(t, nil)

	m = press(t, m, runes("b"), enter)
	assert.Equal(t, 2, shop.Cart.Quantity(1))
	assert.Contains(t, m.View(), "Cart (2)")

	m = press(t, m, runes("c"))
	assert.Equal(t, modeCart, m.mode)

	m = press(t, m, runes("d"))
	assert.Equal(t, 1, shop.Cart.Quantity(1))
	m = press(t, m, runes("d"))
	assert.Zero(t, shop.Cart.Len())
	assert.Contains(t, m.View(), "Cart is empty")

	// removing from an empty cart does nothing
	m = press(t, m, runes("d"))
	assert.Zero(t, shop.Cart.Len())

	m = press(t, m, esc)
	assert.Equal(t, modeBrowse, m.mode)
}

func TestPay(t *testing.T) {
	m, shop := newTestModel(t, nil)

	m = press(t, m, runes("p"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.True(t, m.statusErr)

	m = press(t, m, runes("b"), runes("c"), runes("p"))
	require.Equal(t, modeReceipt, m.mode)
	require.NotNil(t, m.receipt)
	assert.InDelta(t, 10.0, m.receipt.Amount, 1e-9)
	assert.Contains(t, m.View(), "PayPal")
	// default policy keeps the cart
	assert.Equal(t, 1, shop.Cart.Count())

	m = press(t, m, runes("x"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.Nil(t, m.receipt)
}

func TestAdminForm(t *testing.T) {
	m, shop := newTestModel(t, &auth.Session{Username: auth.AdminUser, Admin: true})

	m = press(t, m, runes("a"))
	require.Equal(t, modeAdmin, m.mode)

	m = typeText(t, m, "Dune")
	m = press(t, m, tab)
	m = typeText(t, m, "Spice")
	m = press(t, m, tab)
	m = typeText(t, m, "abc")
	m = press(t, m, enter)
	assert.Equal(t, modeAdmin, m.mode, "bad price keeps the form open")
	assert.NotEmpty(t, m.form.err)

	m.form.inputs[fieldPrice].SetValue("12.5")
	m = press(t, m, enter)
	assert.Equal(t, modeBrowse, m.mode)

	books := shop.Catalog.List()
	require.Len(t, books, 2)
	assert.Equal(t, "Dune", books[1].Title)
	assert.Equal(t, int64(2), books[1].ID)
	assert.Equal(t, 12.5, books[1].Price)
	assert.Len(t, m.books.Items(), 2)
}

func TestAdminFormCancel(t *testing.T) {
	m, shop := newTestModel(t, &auth.Session{Username: auth.AdminUser, Admin: true})

	m = press(t, m, runes("a"))
	m = typeText(t, m, "x")
	m = press(t, m, esc)
	assert.Equal(t, modeBrowse, m.mode)
	assert.Len(t, shop.Catalog.List(), 1)
}

func TestAdminOnly(t *testing.T) {
	m, _ := newTestModel(t, &auth.Session{Username: "alice"})

	m = press(t, m, runes("a"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.True(t, m.statusErr)
	assert.Contains(t, m.View(), "Hello, alice")
}

func TestSlotChangedReloads(t *testing.T) {
	m, shop := newTestModel(t, nil)
	m = press(t, m, runes("b"))
	require.Equal(t, 1, shop.Cart.Count())

	// the cart slot is cleared by someone else
	require.NoError(t, shop.Slot.Delete(context.Background(), store.KeyCart))

	next, _ := m.Update(slotChangedMsg{})
	m = next.(Model)
	assert.Zero(t, shop.Cart.Count())
	assert.Contains(t, m.View(), "Cart (0)")
}

func TestWaitForChange(t *testing.T) {
	assert.Nil(t, waitForChange(nil))

	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	assert.Equal(t, slotChangedMsg{}, waitForChange(ch)())

	close(ch)
	assert.Nil(t, waitForChange(ch)())
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, nil)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestBuyOnWatchedSlotKeepsStatus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slot, err := jsonstore.New(t.TempDir())
	require.NoError(t, err)
	watch, err := slot.Watch(ctx, store.KeyCart, nil)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	shop, err := app.New(ctx, cfg, slot, nil, nil)
	require.NoError(t, err)
	m := New(ctx, shop, nil, watch)

	m = press(t, m, runes("b"))
	require.Equal(t, 1, shop.Cart.Count())

	select {
	case <-watch:
		t.Fatal("the shop's own save was reported as an outside change")
	case <-time.After(400 * time.Millisecond):
	}
	assert.Contains(t, m.View(), "added Example Book 1")
}

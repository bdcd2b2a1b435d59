package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Makepad-fr/bookshop/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestGet_Missing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), store.KeyCart)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSet_WritesFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, store.KeyCart, []byte(`[]`)))

	b, err := os.ReadFile(filepath.Join(s.Dir(), "cart.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))

	got, err := s.Get(ctx, store.KeyCart)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	// no temp files left behind
	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDelete_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, store.KeyCurrentUser, []byte(`"Admin"`)))
	require.NoError(t, s.Delete(ctx, store.KeyCurrentUser))
	require.NoError(t, s.Delete(ctx, store.KeyCurrentUser))

	_, err := s.Get(ctx, store.KeyCurrentUser)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInvalidKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"", "..", "../cart", `a\b`} {
		assert.Error(t, s.Set(ctx, key, []byte("x")), key)
		_, err := s.Get(ctx, key)
		assert.Error(t, err, key)
	}
}

func TestNew_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := New(dir)
	require.NoError(t, err)
	assert.DirExists(t, s.Dir())
}

func TestWatch_SignalsOnExternalChange(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx, store.KeyCart, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(s.Path(store.KeyCart), []byte("[]"), 0o644))

	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change signal")
	}

	require.NoError(t, os.Remove(s.Path(store.KeyCart)))
	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a signal for removal")
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatch_IgnoresOtherKeys(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx, store.KeyCart, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(s.Path(store.KeyBooks), []byte("[]"), 0o644))

	select {
	case <-ch:
		t.Fatal("unexpected signal for another key")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatch_SkipsOwnWrites(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx, store.KeyCart, nil)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, store.KeyCart, []byte(`[{"id":1,"quantity":1}]`)))
	select {
	case <-ch:
		t.Fatal("own Set must not signal")
	case <-time.After(400 * time.Millisecond):
	}

	require.NoError(t, s.Delete(ctx, store.KeyCart))
	select {
	case <-ch:
		t.Fatal("own Delete must not signal")
	case <-time.After(400 * time.Millisecond):
	}

	// a different writer still gets through
	require.NoError(t, os.WriteFile(s.Path(store.KeyCart), []byte("[]"), 0o644))
	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a signal for an outside write")
	}
}

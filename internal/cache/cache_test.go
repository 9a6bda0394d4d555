package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	data map[string]string
	gets int
	err  error
}

func (m *memStore) Get(_ context.Context, path string) (string, bool, error) {
	m.gets++
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.data[path]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, path, fp string) error {
	if m.err != nil {
		return m.err
	}
	m.data[path] = fp
	return nil
}

func (m *memStore) List(_ context.Context) (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

func TestMemoryOnly(t *testing.T) {
	ctx := context.Background()
	c := NewFingerprintCache(nil)

	_, ok := c.Get(ctx, "a.blade.php")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "a.blade.php", "fp1"))
	assert.True(t, c.Matches(ctx, "a.blade.php", "fp1"))
	assert.False(t, c.Matches(ctx, "a.blade.php", "fp2"))

	c.Forget("a.blade.php")
	assert.False(t, c.Matches(ctx, "a.blade.php", "fp1"))
	assert.NoError(t, c.Preload(ctx))
}

func TestStoreFallbackAndWriteThrough(t *testing.T) {
	ctx := context.Background()
	store := &memStore{data: map[string]string{"x.blade.php": "stored"}}
	c := NewFingerprintCache(store)

	fp, ok := c.Get(ctx, "x.blade.php")
	require.True(t, ok)
	assert.Equal(t, "stored", fp)

	// Second lookup is served from memory.
	c.Get(ctx, "x.blade.php")
	assert.Equal(t, 1, store.gets)

	require.NoError(t, c.Set(ctx, "y.blade.php", "new"))
	assert.Equal(t, "new", store.data["y.blade.php"])
}

func TestPreload(t *testing.T) {
	ctx := context.Background()
	store := &memStore{data: map[string]string{"a": "1", "b": "2"}}
	c := NewFingerprintCache(store)

	require.NoError(t, c.Preload(ctx))
	assert.True(t, c.Matches(ctx, "b", "2"))
	assert.Equal(t, 0, store.gets)
}

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()
	store := &memStore{data: map[string]string{}, err: errors.New("db down")}
	c := NewFingerprintCache(store)

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	assert.Error(t, c.Set(ctx, "a", "1"))
	assert.Error(t, c.Preload(ctx))

	// The memory side still records the value.
	assert.True(t, c.Matches(ctx, "a", "1"))
}

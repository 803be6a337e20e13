package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	args := m.Called(ctx, key)
	entry, _ := args.Get(0).(Entry)
	return entry, args.Bool(1), args.Error(2)
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockStore) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Sweep(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) Name() string { return "mock" }
func (m *mockStore) Close() error { return nil }

func TestServiceMemoryTier(t *testing.T) {
	ctx := context.Background()
	svc := NewService(time.Minute, 10, nil, nil)

	_, found := svc.Get(ctx, "nba:PlayerGameStatsByDate:2024-JAN-15")
	assert.False(t, found)

	svc.Set(ctx, "nba:PlayerGameStatsByDate:2024-JAN-15", []byte(`[]`), time.Minute)
	data, found := svc.Get(ctx, "nba:PlayerGameStatsByDate:2024-JAN-15")
	require.True(t, found)
	assert.Equal(t, []byte(`[]`), data)

	hits, misses, ratio := svc.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.InDelta(t, 0.5, ratio, 1e-9)

	require.NoError(t, svc.Clear(ctx))
	_, found = svc.Get(ctx, "nba:PlayerGameStatsByDate:2024-JAN-15")
	assert.False(t, found)
	assert.Equal(t, 0, svc.ItemCount())
}

func TestServiceEntryExpires(t *testing.T) {
	ctx := context.Background()
	svc := NewService(time.Minute, 10, nil, nil)
	svc.Set(ctx, "k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	_, found := svc.Get(ctx, "k")
	assert.False(t, found)
}

func TestServiceBackfillsFromSecondary(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("Get", ctx, "k").Return(Entry{Value: []byte("v"), TTL: time.Minute}, true, nil).Once()

	svc := NewService(time.Minute, 10, store, nil)
	data, found := svc.Get(ctx, "k")
	require.True(t, found)
	assert.Equal(t, []byte("v"), data)

	// Second read is served from memory.
	_, found = svc.Get(ctx, "k")
	assert.True(t, found)
	store.AssertExpectations(t)
}

func TestServiceBackfillKeepsRemainingTTL(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("Get", ctx, "k").Return(Entry{Value: []byte("v"), TTL: 20 * time.Millisecond}, true, nil).Once()
	store.On("Get", ctx, "k").Return(nil, false, nil).Once()

	svc := NewService(time.Hour, 10, store, nil)
	_, found := svc.Get(ctx, "k")
	require.True(t, found)

	_, expiresAt, found := svc.memory.GetWithExpiration("k")
	require.True(t, found)
	assert.WithinDuration(t, time.Now().Add(20*time.Millisecond), expiresAt, 20*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	_, found = svc.Get(ctx, "k")
	assert.False(t, found)
	store.AssertExpectations(t)
}

func TestServiceSecondaryErrorsAreMisses(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("Get", ctx, "k").Return(nil, false, errors.New("disk full"))
	store.On("Set", ctx, "k", []byte("v"), time.Minute).Return(errors.New("disk full"))

	svc := NewService(time.Minute, 10, store, nil)
	_, found := svc.Get(ctx, "k")
	assert.False(t, found)

	svc.Set(ctx, "k", []byte("v"), time.Minute)
	data, found := svc.Get(ctx, "k")
	assert.True(t, found)
	assert.Equal(t, []byte("v"), data)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer store.Close()

	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "fresh", []byte("a"), time.Hour))
	require.NoError(t, store.Set(ctx, "stale", []byte("b"), time.Minute))
	require.NoError(t, store.Set(ctx, "fresh", []byte("c"), time.Hour))

	entry, found, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("c"), entry.Value)
	assert.Equal(t, time.Hour, entry.TTL)

	now = now.Add(45 * time.Minute)
	entry, found, err = store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 15*time.Minute, entry.TTL)

	now = now.Add(10 * time.Minute)
	_, found, err = store.Get(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, found)

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	require.NoError(t, store.Clear(ctx))
	_, found, err = store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.False(t, found)
}

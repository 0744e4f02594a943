package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/scoutmatch/core"
)

// runStoreContract 对任意 core.Store 实现执行相同的行为校验
func runStoreContract(t *testing.T, s core.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.True(t, core.IsStoreNotFound(err), "missing key should be NOT_FOUND, got %v", err)

	require.NoError(t, s.Set(ctx, "model:knn", []byte("v1")))
	got, err := s.Get(ctx, "model:knn")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, s.Set(ctx, "model:knn", []byte("v2"), 60))
	got, err = s.Get(ctx, "model:knn")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, s.BatchSet(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2")}))
	batch, err := s.BatchGet(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, batch)

	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "a"), "deleting a missing key is not an error")
	_, err = s.Get(ctx, "a")
	assert.True(t, core.IsStoreNotFound(err))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	runStoreContract(t, s)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "matches:club_1", []byte("v"), 60))
	require.NoError(t, s.Set(ctx, "model:knn", []byte("snapshot")))
	assert.Equal(t, 2, s.Len())

	now = now.Add(61 * time.Second)
	_, err := s.Get(ctx, "matches:club_1")
	assert.True(t, core.IsStoreNotFound(err))
	assert.Equal(t, 1, s.Len())

	got, err := s.Get(ctx, "model:knn")
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot"), got)
}

func TestMemoryStoreSweep(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "short", []byte("v"), 1))
	now = now.Add(2 * time.Second)
	for i := 1; i < sweepEvery; i++ {
		require.NoError(t, s.Set(ctx, "keep", []byte("v")))
	}
	s.mu.RLock()
	_, ok := s.data["short"]
	s.mu.RUnlock()
	assert.False(t, ok, "expired key should be swept")
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadgerStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()
	runStoreContract(t, s)
}

func TestBadgerStorePersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "model:similarity", []byte("snapshot")))
	require.NoError(t, s.Close())

	s, err = OpenBadgerStore(dir)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "model:similarity")
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot"), got)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("SCOUTMATCH_TEST_REDIS")
	if addr == "" {
		t.Skip("SCOUTMATCH_TEST_REDIS not set")
	}
	s, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr, DB: 15, Prefix: "scoutmatch-test:"})
	require.NoError(t, err)
	defer s.Close()
	runStoreContract(t, s)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, Config{Driver: "memory"})
	require.NoError(t, err)
	assert.Equal(t, "memory", s.Name())
	require.NoError(t, s.Close())

	s, err = New(ctx, Config{Driver: "badger", BadgerDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "badger", s.Name())
	require.NoError(t, s.Close())

	_, err = New(ctx, Config{Driver: "etcd"})
	assert.True(t, core.IsNotSupported(err))
}

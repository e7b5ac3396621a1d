package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryLockStore struct {
	values map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newMemoryLockStore() *memoryLockStore {
	return &memoryLockStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryLockStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memoryLockStore) Get(_ context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryLockStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func TestRedisLockIsExclusiveUntilReleased(t *testing.T) {
	store := newMemoryLockStore()
	first, err := NewRedisLock(store, "gearshare:lock:booking-completion", 0)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "gearshare:lock:booking-completion", time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, defaultLockTTL, store.ttls["gearshare:lock:booking-completion"])

	ok, err = second.Acquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	// a replica that never acquired must not delete the lease
	require.NoError(t, second.Release(context.Background()))
	assert.Contains(t, store.values, "gearshare:lock:booking-completion")

	require.NoError(t, first.Release(context.Background()))
	assert.NotContains(t, store.values, "gearshare:lock:booking-completion")

	ok, err = second.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockLeavesForeignLease(t *testing.T) {
	store := newMemoryLockStore()
	lock, err := NewRedisLock(store, "k", time.Minute)
	require.NoError(t, err)

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	// lease expired and another worker took it over
	store.values["k"] = "someone-else"
	require.NoError(t, lock.Release(context.Background()))
	assert.Equal(t, "someone-else", store.values["k"])
}

func TestRedisLockReleaseSurfacesReadError(t *testing.T) {
	store := newMemoryLockStore()
	lock, err := NewRedisLock(store, "k", time.Minute)
	require.NoError(t, err)
	_, err = lock.Acquire(context.Background())
	require.NoError(t, err)

	store.getErr = errors.New("connection reset")
	require.Error(t, lock.Release(context.Background()))
}

func TestNewRedisLockValidates(t *testing.T) {
	_, err := NewRedisLock(nil, "k", time.Minute)
	require.Error(t, err)
	_, err = NewRedisLock(newMemoryLockStore(), "", time.Minute)
	require.Error(t, err)
}

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return fmt.Sprintf("sess:%s", accessID)
}

func newTestManager(store *mockStore) *Manager {
	return &Manager{store: store, keyer: store, ttl: time.Hour}
}

func TestManagerStartAndRevoke(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()
	accessID := NewAccessID()
	userID := uuid.New()

	if err := manager.Start(ctx, accessID, userID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if store.data["sess:"+accessID] != userID.String() {
		t.Fatalf("expected session to store the user id")
	}
	if store.ttls["sess:"+accessID] != time.Hour {
		t.Fatalf("expected session ttl to match token ttl")
	}

	ok, err := manager.HasSession(ctx, accessID)
	if err != nil || !ok {
		t.Fatalf("expected live session, got %v %v", ok, err)
	}

	if err := manager.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = manager.HasSession(ctx, accessID)
	if err != nil || ok {
		t.Fatalf("expected revoked session, got %v %v", ok, err)
	}
}

func TestManagerRejectsBlankAccessID(t *testing.T) {
	manager := newTestManager(newMockStore())
	ctx := context.Background()
	if err := manager.Start(ctx, " ", uuid.New()); err == nil {
		t.Fatal("expected error for blank access id")
	}
	if _, err := manager.HasSession(ctx, ""); err == nil {
		t.Fatal("expected error for blank access id")
	}
	if err := manager.Revoke(ctx, ""); err == nil {
		t.Fatal("expected error for blank access id")
	}
}

func TestManagerHasSessionPropagatesStoreErrors(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("redis down")
	manager := newTestManager(store)
	if _, err := manager.HasSession(context.Background(), "abc"); err == nil {
		t.Fatal("expected store error to propagate")
	}
}

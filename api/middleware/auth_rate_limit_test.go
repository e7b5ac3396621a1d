package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/gearshare-backend/pkg/errors"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (f *fakeRateStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func loginRequest(body, remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/login", strings.NewReader(body))
	req.RemoteAddr = remote
	return req
}

func TestAuthRateLimitPassesBodyThrough(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 2)
	var seen string
	h := AuthRateLimit(policy, newFakeRateStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seen = string(b)
		w.WriteHeader(http.StatusOK)
	}))

	body := `{"username":"alice","password":"secret"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, loginRequest(body, "1.2.3.4:5678"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, seen)
}

func TestAuthRateLimitUsernameLimit(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 2)
	h := AuthRateLimit(policy, newFakeRateStore(), nil)(okHandler(nil, nil))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		// a different IP each time; only the username counter can trip
		h.ServeHTTP(rec, loginRequest(`{"username":"alice","password":"x"}`, "10.0.0."+string(rune('1'+i))+":1"))
		if i < 2 {
			require.Equal(t, http.StatusOK, rec.Code)
			continue
		}
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		var payload struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, string(pkgerrors.CodeRateLimit), payload.Error.Code)
	}

	// usernames are case-sensitive, so a different spelling has its own counter
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, loginRequest(`{"username":"Alice","password":"x"}`, "10.0.0.9:1"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRateLimitIPLimit(t *testing.T) {
	policy := NewAuthRateLimitPolicy("register", time.Minute, 1, 0)
	h := AuthRateLimit(policy, newFakeRateStore(), nil)(okHandler(nil, nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, loginRequest(`{"username":"a"}`, "5.6.7.8:1234"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, loginRequest(`{"username":"b"}`, "5.6.7.8:4321"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	req := loginRequest(`{"username":"c"}`, "5.6.7.8:1")
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 5.6.7.8")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRateLimitStoreFailure(t *testing.T) {
	store := newFakeRateStore()
	store.err = errors.New("redis down")
	h := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 5, 5), store, nil)(okHandler(nil, nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, loginRequest(`{"username":"a"}`, "1.1.1.1:1"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuthRateLimitDisabledPolicy(t *testing.T) {
	store := newFakeRateStore()
	h := AuthRateLimit(NewAuthRateLimitPolicy("login", 0, 1, 1), store, nil)(okHandler(nil, nil))
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, loginRequest(`{"username":"a"}`, "1.1.1.1:1"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Empty(t, store.counts)
}

package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/tripnest/tripnest-backend/pkg/errors"
)

type fakeRateCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeRateCounter() *fakeRateCounter {
	return &fakeRateCounter{counts: map[string]int64{}}
}

func (f *fakeRateCounter) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[key]++
	return f.counts[key], nil
}

func loginAttempt(t *testing.T, handler http.Handler, email, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"`+email+`","password":"hunter2"}`))
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthRateLimit_AllowsUnderLimitAndPreservesBody(t *testing.T) {
	policy := AuthRateLimitPolicy{Name: "login", Window: time.Minute, IPLimit: 5, EmailLimit: 5}
	handler := AuthRateLimit(policy, newFakeRateCounter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"email":"alex@example.com"`, "body must survive the email peek")
		w.WriteHeader(http.StatusOK)
	}))

	rec := loginAttempt(t, handler, "alex@example.com", "1.2.3.4:5678")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRateLimit_EmailLimitTrips(t *testing.T) {
	policy := AuthRateLimitPolicy{Name: "login", Window: time.Minute, EmailLimit: 2}
	handler := AuthRateLimit(policy, newFakeRateCounter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	assert.Equal(t, http.StatusOK, loginAttempt(t, handler, "alex@example.com", "1.2.3.4:1").Code)
	// Case and a different source address do not dodge the counter.
	assert.Equal(t, http.StatusOK, loginAttempt(t, handler, "ALEX@example.com", "5.6.7.8:1").Code)

	rec := loginAttempt(t, handler, "alex@example.com", "9.9.9.9:1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, string(pkgerrors.CodeRateLimit), payload.Error.Code)
}

func TestAuthRateLimit_IPLimitTrips(t *testing.T) {
	policy := AuthRateLimitPolicy{Name: "register", Window: time.Minute, IPLimit: 1}
	handler := AuthRateLimit(policy, newFakeRateCounter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	assert.Equal(t, http.StatusOK, loginAttempt(t, handler, "a@example.com", "5.6.7.8:1").Code)
	// A second registration from the same host trips, regardless of email.
	assert.Equal(t, http.StatusTooManyRequests, loginAttempt(t, handler, "b@example.com", "5.6.7.8:2").Code)
	// A different host is unaffected.
	assert.Equal(t, http.StatusOK, loginAttempt(t, handler, "c@example.com", "9.9.9.9:1").Code)
}

func TestAuthRateLimit_ForwardedForWins(t *testing.T) {
	policy := AuthRateLimitPolicy{Name: "login", Window: time.Minute, IPLimit: 1}
	handler := AuthRateLimit(policy, newFakeRateCounter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`))
		req.RemoteAddr = "10.0.0.1:1"
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "attempt %d", i)
	}
}

func TestAuthRateLimit_DisabledPolicyPassesThrough(t *testing.T) {
	handler := AuthRateLimit(AuthRateLimitPolicy{}, newFakeRateCounter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, loginAttempt(t, handler, "alex@example.com", "1.2.3.4:1").Code)
	}
}

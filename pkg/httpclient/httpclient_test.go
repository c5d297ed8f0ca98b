package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("seconds", func(t *testing.T) {
		assert.Equal(t, 5*time.Second, ParseRetryAfter("5", now))
	})

	t.Run("http date", func(t *testing.T) {
		header := now.Add(30 * time.Second).Format(http.TimeFormat)
		assert.Equal(t, 30*time.Second, ParseRetryAfter(header, now))
	})

	t.Run("past date clamps to zero", func(t *testing.T) {
		header := now.Add(-time.Minute).Format(http.TimeFormat)
		assert.Equal(t, time.Duration(0), ParseRetryAfter(header, now))
	})

	t.Run("empty and garbage", func(t *testing.T) {
		assert.Equal(t, time.Duration(0), ParseRetryAfter("", now))
		assert.Equal(t, time.Duration(0), ParseRetryAfter("soonish", now))
		assert.Equal(t, time.Duration(0), ParseRetryAfter("-3", now))
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&StatusError{StatusCode: 429}))
	assert.True(t, IsRetryable(&StatusError{StatusCode: 500}))
	assert.True(t, IsRetryable(&StatusError{StatusCode: 503}))
	assert.True(t, IsRetryable(errors.New("connection refused")))

	assert.False(t, IsRetryable(&StatusError{StatusCode: 401}))
	assert.False(t, IsRetryable(&StatusError{StatusCode: 403}))
	assert.False(t, IsRetryable(&StatusError{StatusCode: 404}))
	assert.False(t, IsRetryable(&StatusError{StatusCode: 400}))
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(&StatusError{StatusCode: 401}))
	assert.True(t, IsAuthError(&StatusError{StatusCode: 403}))
	assert.False(t, IsAuthError(&StatusError{StatusCode: 500}))
	assert.False(t, IsAuthError(errors.New("other")))
}

func TestPostJSONRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := New(WithBackoff(time.Millisecond, 5*time.Millisecond))

	var out struct {
		OK bool `json:"ok"`
	}
	err := client.PostJSON(context.Background(), server.URL, nil, map[string]string{"q": "x"}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPostJSONStopsAfterAttemptBudget(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(WithAttempts(2), WithBackoff(time.Millisecond, 5*time.Millisecond))

	err := client.PostJSON(context.Background(), server.URL, nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestAuthFailureIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(WithBackoff(time.Millisecond, 5*time.Millisecond))

	err := client.PostJSON(context.Background(), server.URL, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryAfterIsHonored(t *testing.T) {
	var calls atomic.Int32
	var firstRetryAt time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		firstRetryAt = time.Now()
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(WithBackoff(time.Millisecond, 5*time.Millisecond))

	start := time.Now()
	err := client.PostJSON(context.Background(), server.URL, nil, nil, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, firstRetryAt.Sub(start), 900*time.Millisecond)
}

func TestGetJSONSendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	headers := http.Header{}
	headers.Set("Authorization", "Bearer token-123")

	var out map[string]any
	require.NoError(t, New().GetJSON(context.Background(), server.URL, headers, &out))
	assert.Equal(t, true, out["ok"])
}

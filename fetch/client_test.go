package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/etnz/fterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetJSON(t *testing.T) {
	var capturedQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"fterm","count":3}`))
	}))
	defer srv.Close()

	c := NewClient("test", srv.URL, WithQuery("api_key", "secret"))
	var got struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	err := c.GetJSON(context.Background(), "/thing", map[string][]string{"q": {"x"}}, &got)
	require.NoError(t, err)
	assert.Equal(t, "fterm", got.Name)
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, "api_key=secret&q=x", capturedQuery)
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("test", srv.URL)
	_, err := c.GetBytes(context.Background(), "/secret", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "/secret", apiErr.Endpoint)
	assert.Equal(t, "bad key", apiErr.Message)
}

func TestCache_ServesFromDisk(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"v":1}`))
	}))
	defer srv.Close()

	cache := NewCache(nil, t.TempDir(), fterm.Daily, nil)
	c := NewClient("test", srv.URL, WithTransport(cache))
	for range 3 {
		body, err := c.GetBytes(context.Background(), "/v", nil)
		require.NoError(t, err)
		assert.Equal(t, `{"v":1}`, string(body))
	}
	assert.Equal(t, 1, hits, "only the first request should reach the server")
}

func TestCache_SkipsErrors(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("test", srv.URL, WithTransport(NewCache(nil, t.TempDir(), fterm.Daily, nil)))
	for range 2 {
		_, err := c.GetBytes(context.Background(), "/v", nil)
		require.Error(t, err)
	}
	assert.Equal(t, 2, hits)
}

func TestCache_LiveBypasses(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprintf(w, `{"price":%d}`, hits)
	}))
	defer srv.Close()

	c := NewClient("test", srv.URL, WithTransport(NewCache(nil, t.TempDir(), fterm.Daily, nil)))
	live := c.Live()
	for want := 1; want <= 2; want++ {
		body, err := live.GetBytes(context.Background(), "/quote", nil)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf(`{"price":%d}`, want), string(body))
	}

	// live responses are not stored either
	body, err := c.GetBytes(context.Background(), "/quote", nil)
	require.NoError(t, err)
	assert.Equal(t, `{"price":3}`, string(body))
	assert.Equal(t, 3, hits)
	assert.Empty(t, c.header.Get("Cache-Control"), "Live must not change the original client")
}

func TestClient_LiveSharesLimiter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("test", srv.URL, WithRateLimit(10))
	assert.Same(t, c.limiter, c.Live().limiter)

	start := time.Now()
	for i := range 12 {
		client := c
		if i%2 == 1 {
			client = c.Live()
		}
		_, err := client.GetBytes(context.Background(), "/v", nil)
		require.NoError(t, err)
	}
	// a burst of 10 at 10 req/s: the last two requests wait 100ms each
	assert.GreaterOrEqual(t, time.Since(start), 180*time.Millisecond)
}

func TestMissingKey(t *testing.T) {
	err := MissingKey("fred", "FRED_API_KEY")
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.Contains(t, err.Error(), "FRED_API_KEY")
}

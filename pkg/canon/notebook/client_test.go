package notebook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("valid URL", func(t *testing.T) {
		c, err := NewClient("http://localhost:8080/")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080", c.baseURL)
		assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
		assert.Equal(t, uint(DefaultAttempts), c.attempts)
	})

	t.Run("invalid URL", func(t *testing.T) {
		_, err := NewClient("not a url")
		assert.Error(t, err)
	})

	t.Run("options", func(t *testing.T) {
		c, err := NewClient("http://localhost:8080",
			WithTimeout(5*time.Second),
			WithAttempts(1),
		)
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
		assert.Equal(t, uint(1), c.attempts)
	})
}

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/notebooks", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req createSessionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "# Skill Scope Card", req.Document)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(createSessionResponse{ID: "notebook-42"})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	id, err := c.CreateSession(context.Background(), "# Skill Scope Card")
	require.NoError(t, err)
	assert.Equal(t, "notebook-42", id)
}

func TestCreateSessionEmptyID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(createSessionResponse{})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.CreateSession(context.Background(), "doc")
	assert.ErrorContains(t, err, "empty session id")
}

func TestQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/notebooks/notebook-42/query", r.URL.Path)

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "What are important edge cases to consider?", req.Question)

		json.NewEncoder(w).Encode(queryResponse{Answer: "Generated code\nVendored deps"})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	answer, err := c.Query(context.Background(), "notebook-42", "What are important edge cases to consider?")
	require.NoError(t, err)
	assert.Equal(t, "Generated code\nVendored deps", answer)
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(queryResponse{Answer: "ok"})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithAttempts(3))
	require.NoError(t, err)

	answer, err := c.Query(context.Background(), "s", "q")
	require.NoError(t, err)
	assert.Equal(t, "ok", answer)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithAttempts(3))
	require.NoError(t, err)

	_, err = c.Query(context.Background(), "s", "q")
	assert.ErrorContains(t, err, "400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryBudgetExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithAttempts(2))
	require.NoError(t, err)

	_, err = c.CreateSession(context.Background(), "doc")
	assert.ErrorContains(t, err, "500")
	assert.Equal(t, int32(2), calls.Load())
}

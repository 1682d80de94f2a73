package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-fetch-bench/pkg/fetch"
)

func newTestServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.Write(make([]byte, 2048))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNew(t *testing.T) {
	c := New(0)
	require.NotNil(t, c)
	require.NotNil(t, c.Client)

	var _ fetch.Fetcher = c
}

func TestFetch(t *testing.T) {
	var hits atomic.Int32
	server := newTestServer(t, &hits)
	c := New(5*time.Second, WithHTTPClient(server.Client()))

	t.Run("success", func(t *testing.T) {
		resp, err := c.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, resp.Body, 2048)
	})

	t.Run("non-2xx is an error and is not retried", func(t *testing.T) {
		hits.Store(0)
		resp, err := c.Fetch(context.Background(), server.URL+"/missing")
		assert.Error(t, err)
		assert.Nil(t, resp)
		assert.Equal(t, int32(1), hits.Load())
	})
}

func TestFetchConnectionRefused(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	c := New(time.Second)
	_, err := c.Fetch(context.Background(), closedURL)
	assert.Error(t, err)
}

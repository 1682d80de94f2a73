package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ======================================================================
// モック (Mock) の定義
// ======================================================================

// MockFetcher は Fetcher インターフェースのモックです。
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	args := m.Called(ctx, url)
	err := args.Error(1)

	// レスポンスが存在する場合のみ型アサーションを行う
	if args.Get(0) != nil {
		return args.Get(0).(*Response), err
	}
	return nil, err
}

// ======================================================================
// テスト関数
// ======================================================================

func TestTask(t *testing.T) {
	ctx := context.Background()
	url := "https://example.com"

	t.Run("successful fetch", func(t *testing.T) {
		m := new(MockFetcher)
		m.On("Fetch", mock.Anything, url).Return(&Response{StatusCode: http.StatusOK, Body: []byte("<html></html>")}, nil).Once()

		outcome := Task(ctx, m, url)

		assert.Equal(t, url, outcome.URL)
		assert.Equal(t, 13, outcome.ByteSize)
		assert.Equal(t, http.StatusOK, outcome.StatusCode)
		assert.NoError(t, outcome.Err)
		assert.False(t, outcome.Failed())
		m.AssertExpectations(t)
	})

	t.Run("network error becomes failed outcome", func(t *testing.T) {
		m := new(MockFetcher)
		var resp *Response
		m.On("Fetch", mock.Anything, url).Return(resp, errors.New("connection refused"))

		outcome := Task(ctx, m, url)

		assert.True(t, outcome.Failed())
		assert.Equal(t, 0, outcome.ByteSize)
		assert.True(t, IsNetworkError(outcome.Err))
		assert.Contains(t, outcome.Err.Error(), "connection refused")
		// リトライしないこと
		m.AssertNumberOfCalls(t, "Fetch", 1)
	})

	t.Run("nil response", func(t *testing.T) {
		m := new(MockFetcher)
		m.On("Fetch", mock.Anything, url).Return(nil, nil)

		outcome := Task(ctx, m, url)
		assert.True(t, IsNetworkError(outcome.Err))
	})

	t.Run("nil fetcher", func(t *testing.T) {
		outcome := Task(ctx, nil, url)
		assert.True(t, outcome.Failed())
		assert.Equal(t, url, outcome.URL)
	})
}

func TestTaskWith(t *testing.T) {
	ctx := context.Background()

	t.Run("factory error", func(t *testing.T) {
		factory := func() (Fetcher, error) { return nil, errors.New("boom") }
		outcome := TaskWith(ctx, factory, "https://example.com")
		require.Error(t, outcome.Err)
		assert.True(t, IsNetworkError(outcome.Err))
		assert.Contains(t, outcome.Err.Error(), "boom")
	})

	t.Run("shared factory", func(t *testing.T) {
		sim := &Simulated{SizeFor: func(string) int { return 42 }}
		outcome := TaskWith(ctx, Shared(sim), "https://example.com")
		assert.NoError(t, outcome.Err)
		assert.Equal(t, 42, outcome.ByteSize)
	})
}

func TestIsNetworkError(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.False(t, IsNetworkError(nil))
	})
	t.Run("wrapped network error", func(t *testing.T) {
		err := fmt.Errorf("wrap: %w", &NetworkError{URL: "u", Err: errors.New("x")})
		assert.True(t, IsNetworkError(err))
	})
	t.Run("other error type", func(t *testing.T) {
		assert.False(t, IsNetworkError(errors.New("some error")))
	})
}

func TestSimulated(t *testing.T) {
	ctx := context.Background()

	t.Run("deterministic sizes", func(t *testing.T) {
		sim := &Simulated{}
		a, err := sim.Fetch(ctx, "https://a.example")
		require.NoError(t, err)
		b, err := sim.Fetch(ctx, "https://a.example")
		require.NoError(t, err)
		assert.Equal(t, len(a.Body), len(b.Body))
		assert.GreaterOrEqual(t, len(a.Body), 1024)
	})

	t.Run("configured failure", func(t *testing.T) {
		sim := &Simulated{Fail: map[string]bool{"https://bad.example": true}}
		_, err := sim.Fetch(ctx, "https://bad.example")
		assert.ErrorIs(t, err, ErrSimulatedFailure)
	})

	t.Run("latency is applied", func(t *testing.T) {
		sim := &Simulated{Latency: 20 * time.Millisecond}
		start := time.Now()
		_, err := sim.Fetch(ctx, "https://a.example")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("context canceled during latency", func(t *testing.T) {
		sim := &Simulated{Latency: time.Second}
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := sim.Fetch(cctx, "https://a.example")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBytes(t *testing.T) {
	ctx := context.Background()
	url := "https://example.com/page"

	t.Run("2xx returns body", func(t *testing.T) {
		m := new(MockFetcher)
		m.On("Fetch", ctx, url).Return(&Response{StatusCode: http.StatusOK, Body: []byte("ok")}, nil)

		body, err := Bytes(ctx, m, url)
		require.NoError(t, err)
		assert.Equal(t, []byte("ok"), body)
	})

	t.Run("non-2xx is StatusError", func(t *testing.T) {
		m := new(MockFetcher)
		m.On("Fetch", ctx, url).Return(&Response{StatusCode: http.StatusNotFound}, nil)

		_, err := Bytes(ctx, m, url)
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	})

	t.Run("nil fetcher", func(t *testing.T) {
		_, err := Bytes(ctx, nil, url)
		assert.Error(t, err)
	})
}

package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-fetch-bench/pkg/client"
	"github.com/shouni/go-fetch-bench/pkg/counter"
	"github.com/shouni/go-fetch-bench/pkg/fastclient"
	"github.com/shouni/go-fetch-bench/pkg/fetch"
	"github.com/shouni/go-fetch-bench/pkg/httpclient"
	"github.com/shouni/go-fetch-bench/pkg/strategy"
	"github.com/shouni/go-fetch-bench/pkg/types"
)

func simulatedConfig(t *testing.T, fail ...string) Config {
	t.Helper()
	factory, err := NewFactory(BackendConfig{Name: BackendSimulated, SimFail: fail})
	require.NoError(t, err)
	return Config{Factory: factory, Counter: counter.KindMutex}
}

func TestNewFactory(t *testing.T) {
	testCases := []struct {
		name     string
		backend  string
		expected any
	}{
		{name: "default", backend: "", expected: &httpclient.Client{}},
		{name: "nethttp", backend: BackendNetHTTP, expected: &httpclient.Client{}},
		{name: "httpkit", backend: BackendHTTPKit, expected: &client.Client{}},
		{name: "fasthttp", backend: BackendFastHTTP, expected: &fastclient.Client{}},
		{name: "simulated", backend: "SIMULATED", expected: &fetch.Simulated{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			factory, err := NewFactory(BackendConfig{Name: tc.backend, Timeout: time.Second})
			require.NoError(t, err)

			f, err := factory()
			require.NoError(t, err)
			assert.IsType(t, tc.expected, f)
		})
	}

	t.Run("nethttp with HTTP2", func(t *testing.T) {
		factory, err := NewFactory(BackendConfig{Name: BackendNetHTTP, HTTP2: true})
		require.NoError(t, err)

		a, err := factory()
		require.NoError(t, err)
		b, err := factory()
		require.NoError(t, err)
		assert.NotSame(t, a, b)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewFactory(BackendConfig{Name: "curl"})
		assert.ErrorIs(t, err, ErrUnknownBackend)
	})
}

func TestRun(t *testing.T) {
	urls := []string{"https://a.example", "https://b.example", "https://c.example"}

	t.Run("all succeed", func(t *testing.T) {
		var out bytes.Buffer
		report, err := Run(context.Background(), &out, strategy.NameSequential, simulatedConfig(t), urls)
		require.NoError(t, err)
		assert.Equal(t, 3, report.CounterFinal)

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 5)
		for i, u := range urls {
			assert.True(t, strings.HasPrefix(lines[i], u+" | Size: "), lines[i])
			assert.True(t, strings.HasSuffix(lines[i], " bytes"), lines[i])
		}
		assert.True(t, strings.HasPrefix(lines[3], "Total time taken: "))
		assert.Equal(t, "Completed tasks: 3", lines[4])
	})

	t.Run("failure is reported after all output", func(t *testing.T) {
		var out bytes.Buffer
		report, err := Run(context.Background(), &out, strategy.NameThreads, simulatedConfig(t, "https://b.example"), urls)
		assert.ErrorIs(t, err, ErrFetchFailed)
		assert.Len(t, report.Outcomes, 3)
		assert.Contains(t, out.String(), "https://b.example | Error: ")
		assert.Contains(t, out.String(), "Completed tasks: 3")
	})

	t.Run("unknown strategy", func(t *testing.T) {
		var out bytes.Buffer
		_, err := Run(context.Background(), &out, "fibers", simulatedConfig(t), urls)
		assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)
		assert.Empty(t, out.String())
	})
}

func TestCompare(t *testing.T) {
	urls := []string{"https://a.example", "https://b.example"}

	t.Run("all strategies", func(t *testing.T) {
		var out bytes.Buffer
		reports, err := Compare(context.Background(), &out, simulatedConfig(t), urls)
		require.NoError(t, err)
		require.Len(t, reports, len(strategy.Names()))

		for i, name := range strategy.Names() {
			assert.Equal(t, name, reports[i].Strategy)
			assert.Equal(t, 2, reports[i].CounterFinal)
			assert.Contains(t, out.String(), name)
		}
		assert.Contains(t, out.String(), "fastest")
	})

	t.Run("failures joined per strategy", func(t *testing.T) {
		var out bytes.Buffer
		_, err := Compare(context.Background(), &out, simulatedConfig(t, "https://a.example"), urls)
		assert.ErrorIs(t, err, ErrFetchFailed)
		for _, name := range strategy.Names() {
			assert.Contains(t, err.Error(), name)
		}
	})
}

func TestRenderSummary(t *testing.T) {
	reports := []types.RunReport{
		{Strategy: "slow", Elapsed: 2 * time.Second, CounterFinal: 1, Outcomes: []types.FetchOutcome{{URL: "u", ByteSize: 10}}},
		{Strategy: "quick", Elapsed: time.Second, CounterFinal: 1, Outcomes: []types.FetchOutcome{{URL: "u", ByteSize: 10}}},
	}

	summary := RenderSummary(reports)
	assert.Contains(t, summary, "STRATEGY")
	for _, line := range strings.Split(summary, "\n") {
		if strings.Contains(line, "quick") {
			assert.Contains(t, line, "fastest")
		}
		if strings.Contains(line, "slow") {
			assert.NotContains(t, line, "fastest")
		}
	}
}

package counter

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	assert.IsType(t, &MutexCounter{}, New(KindMutex))
	assert.IsType(t, &AtomicCounter{}, New(KindAtomic))
	assert.IsType(t, &MutexCounter{}, New("unknown"))
}

// TestConcurrentIncrement は、同時に Increment しても更新が失われないことを検証します。
// go test -race で実行することを想定しています。
func TestConcurrentIncrement(t *testing.T) {
	const (
		goroutines = 64
		perWorker  = 500
		rounds     = 10
	)
	expected := goroutines * perWorker

	for _, kind := range []Kind{KindMutex, KindAtomic} {
		t.Run(string(kind), func(t *testing.T) {
			for round := 0; round < rounds; round++ {
				c := New(kind)
				var wg sync.WaitGroup
				wg.Add(goroutines)
				for g := 0; g < goroutines; g++ {
					go func() {
						defer wg.Done()
						for i := 0; i < perWorker; i++ {
							c.Increment()
						}
					}()
				}
				wg.Wait()
				require.Equal(t, expected, c.Value(), "round %d", round)
			}
		})
	}
}

// TestIncrementIsMonotonic は、各呼び出しが返す値が重複せず 1..N をちょうど一度ずつ取ることを検証します。
func TestIncrementIsMonotonic(t *testing.T) {
	const n = 2000

	for _, kind := range []Kind{KindMutex, KindAtomic} {
		t.Run(string(kind), func(t *testing.T) {
			c := New(kind)
			seen := make([]int32, n+1)
			var mu sync.Mutex
			var wg sync.WaitGroup
			wg.Add(n)
			for i := 0; i < n; i++ {
				go func() {
					defer wg.Done()
					v := c.Increment()
					mu.Lock()
					seen[v]++
					mu.Unlock()
				}()
			}
			wg.Wait()

			assert.Equal(t, n, c.Value())
			for v := 1; v <= n; v++ {
				assert.Equal(t, int32(1), seen[v], "value %d", v)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	testCases := []struct {
		in       string
		expected Kind
		wantErr  bool
	}{
		{in: "", expected: KindMutex},
		{in: "mutex", expected: KindMutex},
		{in: " Atomic ", expected: KindAtomic},
		{in: "spin", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			kind, err := ParseKind(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, kind)
		})
	}
}

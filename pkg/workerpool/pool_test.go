package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("default workers", func(t *testing.T) {
		p := New(0)
		defer p.Close()
		assert.Equal(t, runtime.NumCPU(), p.Workers())
	})
	t.Run("custom workers", func(t *testing.T) {
		p := New(3)
		defer p.Close()
		assert.Equal(t, 3, p.Workers())
	})
}

func TestSubmitAndWait(t *testing.T) {
	p := New(4)
	defer p.Close()

	var ran atomic.Int32
	handles := make([]*Handle, 0, 100)
	for i := 0; i < 100; i++ {
		h, err := p.Submit(func() { ran.Add(1) })
		require.NoError(t, err)
		handles = append(handles, h)
	}
	for _, h := range handles {
		h.Wait()
	}

	assert.Equal(t, int32(100), ran.Load())
	stats := p.Stats()
	assert.Equal(t, int64(100), stats.Submitted)
	assert.Equal(t, int64(100), stats.Completed)
	assert.Equal(t, 0, stats.Pending)
}

// TestBoundedParallelism は、同時に実行されるタスク数がワーカー数を超えないことを検証します。
func TestBoundedParallelism(t *testing.T) {
	const workers = 2
	p := New(workers)
	defer p.Close()

	var running, peak atomic.Int32
	var handles []*Handle
	for i := 0; i < 10; i++ {
		h, err := p.Submit(func() {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
		})
		require.NoError(t, err)
		handles = append(handles, h)
	}
	for _, h := range handles {
		h.Wait()
	}

	assert.LessOrEqual(t, peak.Load(), int32(workers))
	assert.Equal(t, int32(workers), peak.Load())
}

func TestSubmitAfterClose(t *testing.T) {
	p := New(1)
	p.Close()

	h, err := p.Submit(func() {})
	assert.ErrorIs(t, err, ErrPoolClosed)
	assert.Nil(t, h)
}

func TestCloseDrainsQueue(t *testing.T) {
	p := New(1)

	var mu sync.Mutex
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		_, err := p.Submit(func() {
			time.Sleep(time.Millisecond)
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
		require.NoError(t, err)
	}
	p.Close()

	// ワーカー1つの場合はFIFO順に実行される
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestPanicIsRecovered(t *testing.T) {
	p := New(1)
	defer p.Close()

	h, err := p.Submit(func() { panic("boom") })
	require.NoError(t, err)
	h.Wait()

	// ワーカーは生き残っている
	var ran atomic.Bool
	h2, err := p.Submit(func() { ran.Store(true) })
	require.NoError(t, err)
	h2.Wait()
	assert.True(t, ran.Load())
}

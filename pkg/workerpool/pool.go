// Package workerpool は、固定数のワーカーが共有FIFOキューからタスクを取り出して実行する
// 有界ワーカープールを提供します。
package workerpool

import (
	"errors"
	"runtime"
	"sync"

	"github.com/eapache/queue"
)

// ErrPoolClosed は Close 後に Submit された場合に返されます。
var ErrPoolClosed = errors.New("workerpool: プールは既にクローズされています")

// Handle は投入されたタスク1件の完了を待つためのハンドルです。
type Handle struct {
	done chan struct{}
}

// Wait はタスクの実行が終わるまでブロックします。
func (h *Handle) Wait() {
	<-h.done
}

// Done はタスク完了時にクローズされるチャネルを返します。
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

type job struct {
	fn     func()
	handle *Handle
}

// Stats はプールの統計情報です。
type Stats struct {
	Workers   int
	Submitted int64
	Completed int64
	Pending   int
}

// Pool は W 個のワーカーゴルーチンと、それらが共有するFIFOキューからなります。
// Submit はキューに積むだけで呼び出し元をブロックしません。
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	q       *queue.Queue // *job のFIFO。mu で保護
	closed  bool
	workers int
	wg      sync.WaitGroup

	submitted int64
	completed int64
}

// New は workers 個のワーカーを起動したプールを生成します。
// workers <= 0 の場合は runtime.NumCPU() を使用します。
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &Pool{
		q:       queue.New(),
		workers: workers,
	}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit はタスクをキューの末尾に追加し、その完了を待つための Handle を返します。
func (p *Pool) Submit(fn func()) (*Handle, error) {
	h := &Handle{done: make(chan struct{})}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	p.q.Add(&job{fn: fn, handle: h})
	p.submitted++
	p.cond.Signal()
	return h, nil
}

// Workers はワーカー数を返します。
func (p *Pool) Workers() int {
	return p.workers
}

// Stats は現在の統計情報を返します。
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Workers:   p.workers,
		Submitted: p.submitted,
		Completed: p.completed,
		Pending:   p.q.Length(),
	}
}

// Close は新規投入を止め、キューに残ったタスクをすべて実行し終えてからワーカーを終了させます。
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		p.cond.Broadcast()
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for p.q.Length() == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.q.Length() == 0 {
			// クローズ済みかつキューが空
			p.mu.Unlock()
			return
		}
		j := p.q.Remove().(*job)
		p.mu.Unlock()

		p.execute(j)
	}
}

// execute はタスクを実行します。タスク内の panic は回復し、ハンドルは必ず完了させます。
func (p *Pool) execute(j *job) {
	defer func() {
		_ = recover()
		p.mu.Lock()
		p.completed++
		p.mu.Unlock()
		close(j.handle.done)
	}()
	j.fn()
}

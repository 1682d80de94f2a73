// Package coop は、M 本のキャリアスレッド上で多数のタスクを N:M で多重化する協調スケジューラです。
//
// タスクは Step の連なりとして表現されます。Step はキャリア上で実行され、
// ネットワークI/Oの境界で Yield.Suspend を呼ぶことでキャリアを手放します。
// I/O はキャリアの外 (ランタイムのネットワークポーラー) で待機し、完了すると
// 続きの Step が共有の ready キューに戻され、空いているキャリアが実行します。
// 1つのキャリア上で同時に計算を行うタスクは常に1つだけです。
package coop

import (
	"errors"
	"runtime"
	"sync"

	"github.com/eapache/queue"
)

// ErrSchedulerClosed は Close 後に Spawn された場合に返されます。
var ErrSchedulerClosed = errors.New("coop: スケジューラは既にクローズされています")

// Step はキャリア上で実行されるタスクの1区間です。
type Step func(y *Yield)

// Yield は実行中の Step に渡され、タスクを中断するために使用します。
type Yield struct {
	s         *Scheduler
	suspended bool
}

// Suspend は現在のタスクを中断します。io はキャリアの外で実行され、
// 完了後に next が ready キューへ戻されます。Suspend を呼んだ Step はそのまま return する必要があります。
// 1つの Step の中で Suspend を呼べるのは1回だけです。
func (y *Yield) Suspend(io func(), next Step) {
	if y.suspended {
		panic("coop: Suspend が同じ Step の中で2回呼ばれました")
	}
	y.suspended = true
	s := y.s
	s.mu.Lock()
	s.suspensions++
	s.mu.Unlock()

	go func() {
		io()
		s.enqueue(next)
	}()
}

// Stats はスケジューラの統計情報です。
type Stats struct {
	Carriers    int
	Spawned     int64
	Completed   int64
	Suspensions int64
}

// Scheduler は共有 ready キューと、それを消費するキャリアの集合です。
type Scheduler struct {
	mu       sync.Mutex
	work     *sync.Cond // ready キューに要素が追加された / クローズされた
	idle     *sync.Cond // 未完了タスクが 0 になった
	ready    *queue.Queue
	pending  int
	closed   bool
	carriers int
	wg       sync.WaitGroup

	spawned     int64
	completed   int64
	suspensions int64
}

// New は carriers 本のキャリアを起動したスケジューラを生成します。
// carriers <= 0 の場合は runtime.NumCPU() を使用します。
func New(carriers int) *Scheduler {
	if carriers <= 0 {
		carriers = runtime.NumCPU()
	}
	s := &Scheduler{
		ready:    queue.New(),
		carriers: carriers,
	}
	s.work = sync.NewCond(&s.mu)
	s.idle = sync.NewCond(&s.mu)

	s.wg.Add(carriers)
	for i := 0; i < carriers; i++ {
		go s.carrier()
	}
	return s
}

// Carriers はキャリア数を返します。
func (s *Scheduler) Carriers() int {
	return s.carriers
}

// Spawn は新しいタスクを ready キューに追加します。呼び出し元はブロックしません。
func (s *Scheduler) Spawn(step Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSchedulerClosed
	}
	s.pending++
	s.spawned++
	s.ready.Add(step)
	s.work.Signal()
	return nil
}

// Wait は、投入済みのすべてのタスクが最後の Step まで終わるのを待ちます。
func (s *Scheduler) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.pending > 0 {
		s.idle.Wait()
	}
}

// Close は未完了タスクの終了を待ってからキャリアを停止します。
func (s *Scheduler) Close() {
	s.Wait()
	s.mu.Lock()
	s.closed = true
	s.work.Broadcast()
	s.mu.Unlock()
	s.wg.Wait()
}

// Stats は現在の統計情報を返します。
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Carriers:    s.carriers,
		Spawned:     s.spawned,
		Completed:   s.completed,
		Suspensions: s.suspensions,
	}
}

func (s *Scheduler) enqueue(step Step) {
	s.mu.Lock()
	s.ready.Add(step)
	s.work.Signal()
	s.mu.Unlock()
}

// carrier はOSスレッドに固定されたゴルーチンとして ready キューを消費します。
func (s *Scheduler) carrier() {
	defer s.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		s.mu.Lock()
		for s.ready.Length() == 0 && !s.closed {
			s.work.Wait()
		}
		if s.ready.Length() == 0 {
			s.mu.Unlock()
			return
		}
		step := s.ready.Remove().(Step)
		s.mu.Unlock()

		s.run(step)
	}
}

func (s *Scheduler) run(step Step) {
	y := &Yield{s: s}
	func() {
		// Suspend 前の panic はそのタスクの終了、Suspend 後の panic は続きの Step に任せる
		defer func() { _ = recover() }()
		step(y)
	}()

	if y.suspended {
		return
	}

	s.mu.Lock()
	s.pending--
	s.completed++
	if s.pending == 0 {
		s.idle.Broadcast()
	}
	s.mu.Unlock()
}

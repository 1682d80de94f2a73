package strategy

import (
	"context"
	"runtime"

	"github.com/shouni/go-fetch-bench/pkg/types"
)

// ThreadPerTask はURLごとに専用のOSスレッドを1本割り当てる戦略です。
//
// 各タスクは runtime.LockOSThread したゴルーチンで実行され、Unlock せずに終了するため、
// スレッドはタスクと共に破棄されます。ロックされたスレッドはI/O待ちの間も他のゴルーチンを
// 実行できないので、ランタイムは同時に実行中のタスク数だけスレッドを用意することになります。
// すべてのタスクを起動してから、起動順に join します。
type ThreadPerTask struct {
	opts Options
}

// NewThreadPerTask は ThreadPerTask を生成します。デフォルトではタスクごとにクライアントを生成します。
func NewThreadPerTask(opts Options) *ThreadPerTask {
	return &ThreadPerTask{opts: opts}
}

func (s *ThreadPerTask) Name() string {
	return NameThreads
}

func (s *ThreadPerTask) Run(ctx context.Context, urls []string) types.RunReport {
	return timed(ctx, s.Name(), urls, s.opts, ClientPerTask, func(r *run) {
		results := make([]types.FetchOutcome, len(urls))
		joins := make([]chan struct{}, len(urls))

		// 1. すべてのスレッドを起動 (join より前)
		for i, url := range urls {
			done := make(chan struct{})
			joins[i] = done

			go func(i int, url string) {
				runtime.LockOSThread()
				defer close(done)

				results[i] = r.fetch(url)
				r.complete()
			}(i, url)
		}

		// 2. 起動順に join し、join した順に結果を記録
		for i, done := range joins {
			<-done
			r.record(results[i])
		}
	})
}

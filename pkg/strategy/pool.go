package strategy

import (
	"context"

	"github.com/shouni/go-fetch-bench/pkg/types"
	"github.com/shouni/go-fetch-bench/pkg/workerpool"
)

// BoundedPool は W 個のワーカーが共有FIFOキューからタスクを取り出す有界プールの戦略です。
// 投入は呼び出し元をブロックせず、完了は投入したすべてのハンドルを待つことで確認します。
// 結果は完了順に並びます。
type BoundedPool struct {
	opts    Options
	workers int
}

// NewBoundedPool は BoundedPool を生成します。workers <= 0 の場合は DefaultWorkers を使用します。
func NewBoundedPool(opts Options, workers int) *BoundedPool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &BoundedPool{opts: opts, workers: workers}
}

func (s *BoundedPool) Name() string {
	return NamePool
}

// Workers はワーカー数を返します。
func (s *BoundedPool) Workers() int {
	return s.workers
}

func (s *BoundedPool) Run(ctx context.Context, urls []string) types.RunReport {
	return timed(ctx, s.Name(), urls, s.opts, ClientShared, func(r *run) {
		pool := workerpool.New(s.workers)
		defer pool.Close()

		handles := make([]*workerpool.Handle, 0, len(urls))
		for _, url := range urls {
			task := func() {
				outcome := r.fetch(url)
				r.complete()
				r.record(outcome)
			}

			h, err := pool.Submit(task)
			if err != nil {
				// プールは実行中にクローズされないため通常は到達しないが、結果を落とさないよう同期実行する
				task()
				continue
			}
			handles = append(handles, h)
		}

		for _, h := range handles {
			h.Wait()
		}
	})
}

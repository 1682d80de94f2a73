package strategy

import (
	"context"

	"github.com/shouni/go-fetch-bench/pkg/types"
)

// Sequential は並行性を持たない基準の戦略です。呼び出し元のゴルーチンでURLを1つずつ処理します。
// 結果は入力順に並びます。
type Sequential struct {
	opts Options
}

// NewSequential は Sequential を生成します。デフォルトではクライアントを共有します。
func NewSequential(opts Options) *Sequential {
	return &Sequential{opts: opts}
}

func (s *Sequential) Name() string {
	return NameSequential
}

func (s *Sequential) Run(ctx context.Context, urls []string) types.RunReport {
	return timed(ctx, s.Name(), urls, s.opts, ClientShared, func(r *run) {
		for _, url := range urls {
			outcome := r.fetch(url)
			r.complete()
			r.record(outcome)
		}
	})
}

package strategy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shouni/go-fetch-bench/pkg/counter"
	"github.com/shouni/go-fetch-bench/pkg/fetch"
	"github.com/shouni/go-fetch-bench/pkg/osthread"
	"github.com/shouni/go-fetch-bench/pkg/types"
)

// run は1回の実行に属する状態をまとめたものです。実行ごとに生成され、実行をまたいで残りません。
type run struct {
	ctx     context.Context
	clients fetch.Factory
	counter counter.Counter

	mu        sync.Mutex
	outcomes  []types.FetchOutcome
	threads   map[int]struct{}
	onOutcome func(types.FetchOutcome)
}

// fetch はフェッチタスクを1件実行します。カウンタには触れません。
// クライアントがパニックした場合も、そのURLの Failed 結果として返します。
func (r *run) fetch(url string) (outcome types.FetchOutcome) {
	defer func() {
		if p := recover(); p != nil {
			outcome = types.FetchOutcome{
				URL:      url,
				ThreadID: osthread.ID(),
				Err:      &fetch.NetworkError{URL: url, Err: fmt.Errorf("HTTPクライアントがパニックしました: %v", p)},
			}
		}
	}()
	return fetch.TaskWith(r.ctx, r.clients, url)
}

// complete は終端状態 (Completed / Failed のどちらも) に達したタスクを1件数えます。
func (r *run) complete() {
	r.counter.Increment()
}

// record は結果を到着順に追加し、OnOutcome を直列に呼び出します。
func (r *run) record(o types.FetchOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
	if o.ThreadID != 0 {
		r.threads[o.ThreadID] = struct{}{}
	}
	if r.onOutcome != nil {
		r.onOutcome(o)
	}
}

// timed は戦略のディスパッチを計測付きで実行し、RunReport を組み立てます。
// 開始時刻はディスパッチ直前に、終了時刻は全結果の回収 (join / プールの排出 / スケジューラの排出) 後に記録します。
// 共有クライアントの生成は計測の前に済ませ、タスクごとの生成は計測に含めます。
func timed(ctx context.Context, name string, urls []string, opts Options, def ClientPolicy, dispatch func(r *run)) types.RunReport {
	r := &run{
		ctx:       ctx,
		clients:   clientsFor(opts.Factory, opts.Client.resolve(def)),
		counter:   counter.New(opts.Counter),
		outcomes:  make([]types.FetchOutcome, 0, len(urls)),
		threads:   make(map[int]struct{}),
		onOutcome: opts.OnOutcome,
	}

	start := time.Now()
	dispatch(r)
	elapsed := time.Since(start)

	return types.RunReport{
		Strategy:        name,
		Outcomes:        r.outcomes,
		Elapsed:         elapsed,
		CounterFinal:    r.counter.Value(),
		DistinctThreads: len(r.threads),
	}
}

// clientsFor は方針に応じた Factory を返します。
// ClientShared の場合は元の Factory をここで1回だけ呼び出し、その結果を全タスクに配ります。
func clientsFor(factory fetch.Factory, policy ClientPolicy) fetch.Factory {
	if policy == ClientPerTask {
		return factory
	}
	f, err := factory()
	return func() (fetch.Fetcher, error) {
		return f, err
	}
}

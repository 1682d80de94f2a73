package strategy

import (
	"context"

	"github.com/shouni/go-fetch-bench/pkg/coop"
	"github.com/shouni/go-fetch-bench/pkg/osthread"
	"github.com/shouni/go-fetch-bench/pkg/types"
)

// Cooperative は M 本のキャリアスレッド上でタスクを多重化する協調プールの戦略です。
//
// 各タスクはネットワークI/Oの境界で中断してキャリアを手放し、I/O 完了後に
// 任意のキャリア上で再開して結果を記録します。キャリア内の処理は直列で、
// キャリア間で共有される完了カウンタはカウンタ自身の排他制御で保護されます。
// 結果は完了順に並び、ThreadID には再開したキャリアのスレッドが入ります。
//
// 中断中のフェッチ (リクエスト生成・TLS・ボディ読み込みを含む) はキャリアの外で実行されるため、
// M が制限するのはキャリア上のステップの同時実行数だけで、実行中のフェッチの数は制限しません。
type Cooperative struct {
	opts     Options
	carriers int
}

// NewCooperative は Cooperative を生成します。carriers <= 0 の場合は DefaultCarriers を使用します。
func NewCooperative(opts Options, carriers int) *Cooperative {
	if carriers <= 0 {
		carriers = DefaultCarriers
	}
	return &Cooperative{opts: opts, carriers: carriers}
}

func (s *Cooperative) Name() string {
	return NameCooperative
}

// Carriers はキャリア数を返します。
func (s *Cooperative) Carriers() int {
	return s.carriers
}

func (s *Cooperative) Run(ctx context.Context, urls []string) types.RunReport {
	return timed(ctx, s.Name(), urls, s.opts, ClientShared, func(r *run) {
		sched := coop.New(s.carriers)
		defer sched.Close()

		for _, url := range urls {
			var outcome types.FetchOutcome

			finish := func(y *coop.Yield) {
				outcome.ThreadID = osthread.ID()
				r.complete()
				r.record(outcome)
			}
			start := func(y *coop.Yield) {
				y.Suspend(func() { outcome = r.fetch(url) }, finish)
			}

			if err := sched.Spawn(start); err != nil {
				// スケジューラは実行中にクローズされないため通常は到達しない
				outcome = r.fetch(url)
				r.complete()
				r.record(outcome)
			}
		}

		sched.Wait()
	})
}

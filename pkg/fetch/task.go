package fetch

import (
	"context"
	"fmt"

	"github.com/shouni/go-fetch-bench/pkg/osthread"
	"github.com/shouni/go-fetch-bench/pkg/types"
)

// Task は1つのURLに対して1回だけGETを実行し、その結果を FetchOutcome に変換します。
// リトライは行わず、共有状態 (完了カウンタ) も変更しません。カウンタの更新は呼び出し側の責務です。
func Task(ctx context.Context, f Fetcher, url string) types.FetchOutcome {
	tid := osthread.ID()

	if f == nil {
		return failed(url, tid, fmt.Errorf("HTTPクライアントが初期化されていません"))
	}

	resp, err := f.Fetch(ctx, url)
	if err != nil {
		return failed(url, tid, err)
	}
	if resp == nil {
		return failed(url, tid, fmt.Errorf("レスポンスが空です"))
	}

	return types.FetchOutcome{
		URL:        url,
		ByteSize:   len(resp.Body),
		StatusCode: resp.StatusCode,
		ThreadID:   tid,
	}
}

// TaskWith は Factory から Fetcher を生成してから Task を実行します。
// Factory の失敗も、そのURLの Failed 結果として記録されます。
func TaskWith(ctx context.Context, factory Factory, url string) types.FetchOutcome {
	f, err := factory()
	if err != nil {
		return failed(url, osthread.ID(), fmt.Errorf("HTTPクライアントの生成に失敗しました: %w", err))
	}
	return Task(ctx, f, url)
}

func failed(url string, tid int, err error) types.FetchOutcome {
	return types.FetchOutcome{
		URL:      url,
		ThreadID: tid,
		Err:      &NetworkError{URL: url, Err: err},
	}
}

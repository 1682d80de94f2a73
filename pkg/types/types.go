package types

import "time"

// FetchOutcome は、1つのURLに対する1回のフェッチの結果を保持します。
// 1回の実行につきURLごとに必ず1つだけ生成され、生成後に変更されることはありません。
type FetchOutcome struct {
	URL        string // 処理対象のURL
	ByteSize   int    // 読み込んだレスポンスボディのバイト数 (失敗時は 0)
	StatusCode int    // HTTPステータスコード (失敗時は 0)
	ThreadID   int    // フェッチを実行したOSスレッドのID (不明な場合は 0)
	Err        error  // 失敗時のエラー (*fetch.NetworkError)。成功時は nil
}

// Failed は、このフェッチが Failed 状態で終了したかどうかを返します。
func (o FetchOutcome) Failed() bool {
	return o.Err != nil
}

// RunReport は、1つの実行戦略を1回実行した結果の集約です。
type RunReport struct {
	Strategy        string         // 実行戦略の名前
	Outcomes        []FetchOutcome // 結果が利用可能になった順の FetchOutcome
	Elapsed         time.Duration  // ディスパッチ開始から全結果の回収までの経過時間
	CounterFinal    int            // 完了カウンタの最終値
	DistinctThreads int            // フェッチに使われたOSスレッドの数
}

// Succeeded は成功したフェッチの件数を返します。
func (r RunReport) Succeeded() int {
	return len(r.Outcomes) - r.FailedCount()
}

// FailedCount は失敗したフェッチの件数を返します。
func (r RunReport) FailedCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Failed() {
			n++
		}
	}
	return n
}

// TotalBytes は成功したフェッチのバイト数の合計を返します。
func (r RunReport) TotalBytes() int64 {
	var total int64
	for _, o := range r.Outcomes {
		total += int64(o.ByteSize)
	}
	return total
}

// OK は、すべてのフェッチが成功した場合に true を返します。
func (r RunReport) OK() bool {
	return r.FailedCount() == 0
}

// SizeByURL はURLごとのバイト数を返します。実行順序に依存しない比較に使用します。
func (r RunReport) SizeByURL() map[string]int {
	sizes := make(map[string]int, len(r.Outcomes))
	for _, o := range r.Outcomes {
		sizes[o.URL] = o.ByteSize
	}
	return sizes
}

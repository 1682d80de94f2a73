package fetch

import (
	"context"
	"fmt"
)

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// Response は、1回のGETリクエストで得られたステータスとボディです。
type Response struct {
	StatusCode int
	Body       []byte
}

// Fetcher は、URLに対して1回のGETを実行しレスポンスボディ全体を返す
// HTTPクライアント機能のインターフェースを定義します。
// 実行戦略はこの抽象にのみ依存し、TLS・リダイレクト・ヘッダーは実装側に委譲します。
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// FetcherFunc は関数を Fetcher として扱うためのアダプターです。
type FetcherFunc func(ctx context.Context, url string) (*Response, error)

// Fetch は FetcherFunc 自身を呼び出します。
func (f FetcherFunc) Fetch(ctx context.Context, url string) (*Response, error) {
	return f(ctx, url)
}

// Factory は Fetcher を生成します。
// 共有クライアントかタスクごとのクライアントかは、呼び出し回数で表現されます。
type Factory func() (Fetcher, error)

// Shared は、常に同じインスタンスを返す Factory を作成します。
func Shared(f Fetcher) Factory {
	return func() (Fetcher, error) {
		return f, nil
	}
}

// StatusError は2xx以外のステータスが返された場合のエラーです。
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTPステータスコードエラー: %d (URL: %s)", e.StatusCode, e.URL)
}

// Bytes は Fetcher で URL を取得し、2xx の場合のみボディを返します。
// ベンチマーク対象ではなく、ページやフィードからURLリストを集める用途で使用します。
func Bytes(ctx context.Context, f Fetcher, url string) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("HTTPクライアントが初期化されていません")
	}

	resp, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("レスポンスが空です (URL: %s)", url)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

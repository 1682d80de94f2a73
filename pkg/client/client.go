package client

import (
	"context"
	"net/http"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/go-fetch-bench/pkg/fetch"
)

// ----------------------------------------------------------------------
// 定数とインターフェース
// ----------------------------------------------------------------------

const (
	// DefaultHTTPTimeout は、デフォルトのHTTPタイムアウトです。
	DefaultHTTPTimeout = 10 * time.Second
)

// Doer は、標準の *http.Client.Do()と互換性のあるHTTPクライアントのインターフェースを定義します。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client は httpkit.Client をラップし、fetch.Fetcher として利用できるようにします。
// ベンチマークでは1タスク1リクエストとするため、リトライ回数は常に0に固定されます。
// httpkit は2xx以外のステータスをエラーとして返すため、このバックエンドでは
// 非2xxのレスポンスは Failed として記録されます。
type Client struct {
	*httpkit.Client // httpkit.Client を埋め込み、そのすべてのメソッドを継承
}

// ----------------------------------------------------------------------
// 設定とコンストラクタ
// ----------------------------------------------------------------------

// ClientOption はClientの設定を行うための関数型です。
// 内部の httpkit.Client のオプションを適用するためのラッパーです。
type ClientOption func(*Client)

// WithHTTPClient はカスタムのDoerを設定します。
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *Client) {
		// 埋め込み型の httpkit.Client のオプションを呼び出す
		httpkit.WithHTTPClient(doer)(c.Client)
	}
}

// New は新しいClientを初期化します。
func New(timeout time.Duration, options ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	// 1. httpkit.Client をリトライなしで初期化
	c := &Client{
		Client: httpkit.New(timeout, httpkit.WithMaxRetries(0)),
	}

	// 2. ClientOption を適用
	for _, opt := range options {
		opt(c)
	}

	return c
}

// ----------------------------------------------------------------------
// fetch.Fetcher の実装
// ----------------------------------------------------------------------

// Fetch は fetch.Fetcher を実装します。
// httpkit はボディのみを返すため、成功時のステータスは 200 として扱います。
func (c *Client) Fetch(ctx context.Context, url string) (*fetch.Response, error) {
	body, err := c.Client.FetchBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	return &fetch.Response{
		StatusCode: http.StatusOK,
		Body:       body,
	}, nil
}

// IsNonRetryableError は与えられたエラーが非リトライ対象のHTTPエラーであるかを判断します。
// httpkit の同名関数を呼び出します。
func IsNonRetryableError(err error) bool {
	return httpkit.IsNonRetryableError(err)
}

// Package fastclient は valyala/fasthttp を使った fetch.Fetcher の実装を提供します。
// net/http とは異なる接続プールとバッファ管理を持つため、同じ戦略でクライアント実装の差を比較できます。
package fastclient

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/shouni/go-fetch-bench/pkg/fetch"
)

const (
	// DefaultTimeout は読み書きそれぞれのデフォルトのタイムアウトです。
	DefaultTimeout = 30 * time.Second
	// MaxBodySize はレスポンスボディの最大サイズです (10MB)。
	MaxBodySize = 10 * 1024 * 1024
	// MaxRedirects はリダイレクトを追跡する最大回数です。
	MaxRedirects = 10

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"
)

// Client は fasthttp.Client をラップした fetch.Fetcher です。リトライは行いません。
type Client struct {
	client  *fasthttp.Client
	timeout time.Duration
}

// New は新しい Client を生成します。timeout <= 0 の場合は DefaultTimeout を使用します。
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		client: &fasthttp.Client{
			Name:                userAgent,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: MaxBodySize,
			MaxConnsPerHost:     512,

			// 冪等リクエストの自動再試行を無効にし、1タスク1リクエストにする
			MaxIdemponentCallAttempts: 1,
		},
		timeout: timeout,
	}
}

// Fetch は fetch.Fetcher を実装します。
// fasthttp は context を受け取らないため、開始前に ctx の終了を確認し、
// 期限がある場合はリクエストのタイムアウトをその残り時間に制限します。
func (c *Client) Fetch(ctx context.Context, url string) (*fetch.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	// 期限の有無に関わらずリダイレクトを追跡する同じ経路で実行する
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, context.DeadlineExceeded
		}
		if remaining < c.timeout {
			req.SetTimeout(remaining)
		}
	}
	if err := c.client.DoRedirects(req, resp, MaxRedirects); err != nil {
		return nil, fmt.Errorf("fasthttpリクエストに失敗しました: %w", err)
	}

	// resp は解放されるため、ボディはコピーして返す
	body := append([]byte(nil), resp.Body()...)
	return &fetch.Response{
		StatusCode: resp.StatusCode(),
		Body:       body,
	}, nil
}

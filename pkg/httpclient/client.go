package httpclient

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"

	"github.com/shouni/go-fetch-bench/pkg/fetch"
)

const (
	// HTTPクライアント関連の定数
	DefaultHTTPTimeout = 30 * time.Second
	MaxBodySize        = int64(10 * 1024 * 1024) // 10MB: レスポンスボディの最大読み込みサイズ

	// サイトからのブロックを避けるためのUser-Agent
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"
)

// Doer は、標準の *http.Client.Do()と互換性のあるHTTPクライアントのインターフェースを定義します。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// BodyTooLargeError はレスポンスボディが MaxBodySize を超えた場合のエラーです。
type BodyTooLargeError struct {
	Limit int64
}

func (e *BodyTooLargeError) Error() string {
	return fmt.Sprintf("レスポンスボディが最大サイズ (%dバイト) を超えました", e.Limit)
}

// Client は1回のGETを実行し、ステータスに関係なくボディ全体を返す fetch.Fetcher の実装です。
// リトライは行いません。
type Client struct {
	httpClient Doer
	maxBody    int64
}

// ClientOption はClientの設定を行うための関数型です。
type ClientOption func(*Client)

// WithHTTPClient はカスタムのDoerを設定します。
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithTransport は標準の *http.Client を使用している場合に、トランスポートを差し替えます。
func WithTransport(t http.RoundTripper) ClientOption {
	return func(c *Client) {
		if hc, ok := c.httpClient.(*http.Client); ok && t != nil {
			hc.Transport = t
		}
	}
}

// WithMaxBodySize はボディの最大読み込みサイズを設定します。
func WithMaxBodySize(limit int64) ClientOption {
	return func(c *Client) {
		if limit > 0 {
			c.maxBody = limit
		}
	}
}

// New は新しいClientを生成します。timeout <= 0 の場合はタイムアウトを設定しません。
func New(timeout time.Duration, options ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: NewTransport(),
		},
		maxBody: MaxBodySize,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// NewTransport はベンチマーク用に調整した HTTP/1.1 の *http.Transport を生成します。
func NewTransport() *http.Transport {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     false,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return t
}

// NewHTTP2Transport は golang.org/x/net/http2 で HTTP/2 を構成した *http.Transport を生成します。
func NewHTTP2Transport() (*http.Transport, error) {
	t := NewTransport()
	if err := EnableHTTP2(t); err != nil {
		return nil, err
	}
	return t, nil
}

// EnableHTTP2 は既存の *http.Transport に HTTP/2 を構成します。
func EnableHTTP2(t *http.Transport) error {
	if err := http2.ConfigureTransport(t); err != nil {
		return fmt.Errorf("HTTP/2 の構成に失敗しました: %w", err)
	}
	return nil
}

// Fetch は fetch.Fetcher を実装します。
func (c *Client) Fetch(ctx context.Context, url string) (*fetch.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("GETリクエスト作成に失敗しました: %w", err)
	}
	c.addCommonHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストに失敗しました (ネットワーク/接続エラー): %w", err)
	}
	defer resp.Body.Close()

	body, err := readLimited(resp, c.maxBody)
	if err != nil {
		return nil, err
	}

	return &fetch.Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// FetchBytes は URL からコンテンツをフェッチし、生のバイト配列として返します。
// ページやフィードからURLリストを取得する用途で使用します。
func (c *Client) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTPステータスコードエラー: %d (URL: %s)", resp.StatusCode, url)
	}
	return resp.Body, nil
}

// addCommonHeaders は共通のHTTPヘッダーを設定します。
func (c *Client) addCommonHeaders(req *http.Request) {
	req.Header.Set("User-Agent", UserAgent)
}

// readLimited はレスポンスボディを最大 limit バイトまで読み込みます。
// limit を超えるボディはエラーとして扱います。
func readLimited(resp *http.Response, limit int64) ([]byte, error) {
	if resp.ContentLength > limit {
		return nil, &BodyTooLargeError{Limit: limit}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み込みに失敗しました: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, &BodyTooLargeError{Limit: limit}
	}
	return body, nil
}

package pipeline

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shouni/go-fetch-bench/pkg/client"
	"github.com/shouni/go-fetch-bench/pkg/fastclient"
	"github.com/shouni/go-fetch-bench/pkg/fetch"
	"github.com/shouni/go-fetch-bench/pkg/httpclient"
)

// バックエンド名
const (
	BackendNetHTTP   = "nethttp"
	BackendHTTPKit   = "httpkit"
	BackendFastHTTP  = "fasthttp"
	BackendSimulated = "simulated"
)

// ErrUnknownBackend は未知のバックエンド名が指定された場合に返されます。
var ErrUnknownBackend = errors.New("未知のHTTPバックエンドです")

// BackendConfig は HTTP クライアント機能の生成設定です。
type BackendConfig struct {
	Name       string
	Timeout    time.Duration // 0 の場合はタイムアウトなし (nethttp のみ)
	HTTP2      bool          // nethttp で HTTP/2 を有効にする
	SimLatency time.Duration // simulated の1リクエストあたりの遅延
	SimFail    []string      // simulated で失敗させるURL
	Verbose    bool
}

// Backends は利用可能なバックエンド名を返します。
func Backends() []string {
	return []string{BackendNetHTTP, BackendHTTPKit, BackendFastHTTP, BackendSimulated}
}

// NewFactory は設定に応じた fetch.Factory を生成します。
// Factory を呼び出すたびに新しいクライアントが作られるため、共有するかどうかは戦略側の ClientPolicy が決めます。
func NewFactory(cfg BackendConfig) (fetch.Factory, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Name))

	var factory fetch.Factory
	switch name {
	case "", BackendNetHTTP:
		if cfg.HTTP2 {
			// 構成できない場合は HTTP/1.1 で計測を続けず、開始前にエラーにする
			if _, err := httpclient.NewHTTP2Transport(); err != nil {
				return nil, err
			}
		}
		factory = func() (fetch.Fetcher, error) {
			if !cfg.HTTP2 {
				return httpclient.New(cfg.Timeout), nil
			}
			transport, err := httpclient.NewHTTP2Transport()
			if err != nil {
				if cfg.Verbose {
					log.Printf("HTTP/2 の構成に失敗しました: %v", err)
				}
				return nil, err
			}
			return httpclient.New(cfg.Timeout, httpclient.WithTransport(transport)), nil
		}
	case BackendHTTPKit:
		factory = func() (fetch.Fetcher, error) {
			return client.New(cfg.Timeout), nil
		}
	case BackendFastHTTP:
		factory = func() (fetch.Fetcher, error) {
			return fastclient.New(cfg.Timeout), nil
		}
	case BackendSimulated:
		fail := make(map[string]bool, len(cfg.SimFail))
		for _, u := range cfg.SimFail {
			fail[u] = true
		}
		factory = func() (fetch.Fetcher, error) {
			return &fetch.Simulated{Latency: cfg.SimLatency, Fail: fail}, nil
		}
	default:
		return nil, fmt.Errorf("%w: %q (利用可能: %s)", ErrUnknownBackend, cfg.Name, strings.Join(Backends(), ", "))
	}

	if cfg.Verbose {
		if name == "" {
			name = BackendNetHTTP
		}
		log.Printf("HTTPバックエンドを設定しました (Backend: %s, Timeout: %s, HTTP2: %t)。", name, cfg.Timeout, cfg.HTTP2)
	}
	return factory, nil
}

package fetch

import (
	"bytes"
	"context"
	"errors"
	"hash/fnv"
	"net/http"
	"time"
)

// ErrSimulatedFailure は Simulated が失敗対象のURLに対して返すエラーです。
var ErrSimulatedFailure = errors.New("シミュレートされたネットワーク障害")

// Simulated はネットワークに接続せず、固定の遅延と決定的なボディサイズを返す Fetcher です。
// ベンチマークの比較をネットワークから切り離して行う場合に使用します。
type Simulated struct {
	Latency time.Duration
	// SizeFor はURLごとのボディサイズを返します。nil の場合はURLのハッシュから決定します。
	SizeFor func(url string) int
	// Fail に含まれるURLは常に失敗します。
	Fail map[string]bool
}

// Fetch は Latency だけ待機してから、決定的な長さのボディを返します。
// 待機はタイマーでブロックするため、ネットワークI/O待ちと同様にスレッドを占有しません。
func (s *Simulated) Fetch(ctx context.Context, url string) (*Response, error) {
	if s.Latency > 0 {
		timer := time.NewTimer(s.Latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if s.Fail[url] {
		return nil, ErrSimulatedFailure
	}

	size := s.size(url)
	return &Response{
		StatusCode: http.StatusOK,
		Body:       bytes.Repeat([]byte{'x'}, size),
	}, nil
}

func (s *Simulated) size(url string) int {
	if s.SizeFor != nil {
		return s.SizeFor(url)
	}
	h := fnv.New32a()
	h.Write([]byte(url))
	// 1KB〜64KB の範囲
	return 1024 + int(h.Sum32()%(63*1024))
}

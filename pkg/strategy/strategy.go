// Package strategy は、同じワークロード (N個のURLをフェッチし、サイズを記録し、完了数を数える) を
// 異なるスケジューリング方式で実行する4つの実行戦略を提供します。
//
// どの戦略も外部から見た契約は同じで、戦略を入れ替えても結果の集合は変わらず、
// 変わるのは所要時間と結果の順序だけです。
//
// 制限事項: どの戦略もタイムアウト・キャンセル・背圧を独自には持ちません。
// 応答しないエンドポイントが1つあれば、実行全体がその分だけ停止します。
package strategy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shouni/go-fetch-bench/pkg/counter"
	"github.com/shouni/go-fetch-bench/pkg/fetch"
	"github.com/shouni/go-fetch-bench/pkg/types"
)

// 戦略名
const (
	NameSequential  = "sequential"
	NameThreads     = "threads"
	NamePool        = "pool"
	NameCooperative = "cooperative"
)

const (
	// DefaultWorkers は有界プールのデフォルトのワーカー数です。
	DefaultWorkers = 6
	// DefaultCarriers は協調プールのデフォルトのキャリア数です。
	DefaultCarriers = 6
)

// ErrUnknownStrategy は未知の戦略名が指定された場合に返されます。
var ErrUnknownStrategy = errors.New("未知の実行戦略です")

// Strategy は、URLのリストを受け取りフェッチタスクを計算資源に分配する実行戦略です。
type Strategy interface {
	Name() string
	Run(ctx context.Context, urls []string) types.RunReport
}

// Options は全戦略に共通の設定です。
type Options struct {
	// Factory はHTTPクライアント機能を生成します。
	Factory fetch.Factory
	// Client はクライアントを共有するかタスクごとに生成するかを指定します。
	Client ClientPolicy
	// Counter は完了カウンタの実装種別です。
	Counter counter.Kind
	// OnOutcome は結果が利用可能になるたびに直列に呼び出されます。nil でも構いません。
	OnOutcome func(types.FetchOutcome)
}

// Params は戦略固有のリソース量です。
type Params struct {
	Workers  int // 有界プールのワーカー数 (W)
	Carriers int // 協調プールのキャリア数 (M)
}

// Names は全戦略名を比較用の標準順序で返します。
func Names() []string {
	return []string{NameSequential, NameThreads, NamePool, NameCooperative}
}

// New は名前から戦略を生成します。
func New(name string, opts Options, params Params) (Strategy, error) {
	if opts.Factory == nil {
		return nil, fmt.Errorf("strategy.New: Factory cannot be nil")
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameSequential:
		return NewSequential(opts), nil
	case NameThreads:
		return NewThreadPerTask(opts), nil
	case NamePool:
		return NewBoundedPool(opts, params.Workers), nil
	case NameCooperative:
		return NewCooperative(opts, params.Carriers), nil
	default:
		return nil, fmt.Errorf("%w: %q (利用可能: %s)", ErrUnknownStrategy, name, strings.Join(Names(), ", "))
	}
}

// ----------------------------------------------------------------------
// クライアントの共有方針
// ----------------------------------------------------------------------

// ClientPolicy は、HTTPクライアントを実行全体で共有するか、タスクごとに生成するかを表します。
// ベンチマークで比較する変数として、戦略ごとに明示的に設定できます。
type ClientPolicy int

const (
	// ClientDefault は戦略ごとのデフォルトに従います。
	ClientDefault ClientPolicy = iota
	// ClientShared は1回の実行につきクライアントを1つだけ生成し、全タスクで共有します。
	ClientShared
	// ClientPerTask はタスクごとにクライアントを生成します。
	ClientPerTask
)

func (p ClientPolicy) String() string {
	switch p {
	case ClientShared:
		return "shared"
	case ClientPerTask:
		return "per-task"
	default:
		return "default"
	}
}

// ParseClientPolicy は文字列から ClientPolicy を解析します。
func ParseClientPolicy(s string) (ClientPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return ClientDefault, nil
	case "shared":
		return ClientShared, nil
	case "per-task", "pertask":
		return ClientPerTask, nil
	default:
		return ClientDefault, fmt.Errorf("無効なクライアント方針です: %q (default, shared, per-task のいずれか)", s)
	}
}

// resolve は ClientDefault を戦略ごとのデフォルトに置き換えます。
func (p ClientPolicy) resolve(def ClientPolicy) ClientPolicy {
	if p == ClientDefault {
		return def
	}
	return p
}

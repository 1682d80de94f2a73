package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-fetch-bench/internal/pipeline"
	"github.com/shouni/go-fetch-bench/pkg/counter"
	"github.com/shouni/go-fetch-bench/pkg/strategy"
)

// --- グローバル定数 ---

const (
	appName           = "fetch-bench"
	defaultTimeoutSec = 10 // 秒
	defaultBackend    = pipeline.BackendNetHTTP
	defaultSimLatency = 100 * time.Millisecond

	// URLリスト取得 (フィード/ページ) の全体タイムアウト
	DefaultOverallTimeout = 20 * time.Second
)

// --- グローバル変数とフラグ構造体 ---

// AppFlags はこのアプリケーション固有の永続フラグを保持
type AppFlags struct {
	TimeoutSec int           // --timeout HTTPクライアントのタイムアウト (0 = なし)
	Backend    string        // --backend HTTPバックエンド
	Counter    string        // --counter 完了カウンタの実装
	Client     string        // --client クライアントの共有方針
	HTTP2      bool          // --http2 nethttp で HTTP/2 を有効化
	SimLatency time.Duration // --sim-latency simulated バックエンドの遅延
	SimFail    string        // --sim-fail simulated バックエンドで失敗させるURL (カンマ区切り)
}

var Flags AppFlags              // アプリケーション固有フラグにアクセスするためのグローバル変数
var benchConfig pipeline.Config // initAppPreRunE で組み立てられる実行設定

// --- 初期化とロジック (clibaseへのコールバックとして利用) ---

// addAppPersistentFlags は、アプリケーション固有の永続フラグをルートコマンドに追加します。
func addAppPersistentFlags(rootCmd *cobra.Command) {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&Flags.TimeoutSec, "timeout", defaultTimeoutSec, "HTTPリクエストのタイムアウト時間（秒, 0 = なし）")
	pf.StringVar(&Flags.Backend, "backend", defaultBackend,
		fmt.Sprintf("HTTPバックエンド (%s)", strings.Join(pipeline.Backends(), ", ")))
	pf.StringVar(&Flags.Counter, "counter", string(counter.KindMutex), "完了カウンタの実装 (mutex, atomic)")
	pf.StringVar(&Flags.Client, "client", "default", "HTTPクライアントの共有方針 (default, shared, per-task)")
	pf.BoolVar(&Flags.HTTP2, "http2", false, "nethttp バックエンドで HTTP/2 を有効にする")
	pf.DurationVar(&Flags.SimLatency, "sim-latency", defaultSimLatency, "simulated バックエンドの1リクエストあたりの遅延")
	pf.StringVar(&Flags.SimFail, "sim-fail", "", "simulated バックエンドで失敗させるURLのカンマ区切りリスト")
}

// initAppPreRunE は、clibase共通処理の後に実行される、アプリケーション固有のPersistentPreRunEです。
// NOTE: clibaseの PersistentPreRunE チェーンにより、clibase.Flags.Verbose はこの関数実行前に設定済み
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(Flags, clibase.Flags.Verbose)
	if err != nil {
		return err
	}
	benchConfig = cfg
	return nil
}

// buildConfig はフラグから実行設定を組み立てます。
func buildConfig(flags AppFlags, verbose bool) (pipeline.Config, error) {
	if flags.TimeoutSec < 0 {
		return pipeline.Config{}, fmt.Errorf("タイムアウトには0以上の値を指定してください: %d", flags.TimeoutSec)
	}
	timeout := time.Duration(flags.TimeoutSec) * time.Second

	kind, err := counter.ParseKind(flags.Counter)
	if err != nil {
		return pipeline.Config{}, err
	}
	policy, err := strategy.ParseClientPolicy(flags.Client)
	if err != nil {
		return pipeline.Config{}, err
	}

	factory, err := pipeline.NewFactory(pipeline.BackendConfig{
		Name:       flags.Backend,
		Timeout:    timeout,
		HTTP2:      flags.HTTP2,
		SimLatency: flags.SimLatency,
		SimFail:    splitList(flags.SimFail),
		Verbose:    verbose,
	})
	if err != nil {
		return pipeline.Config{}, err
	}

	if verbose {
		log.Printf("完了カウンタ: %s, クライアント方針: %s", kind, policy)
	}

	return pipeline.Config{
		Factory: factory,
		Client:  policy,
		Counter: kind,
		Verbose: verbose,
	}, nil
}

// splitList はカンマ区切りの文字列を空要素なしのスライスに分割します。
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// --- エントリポイント ---

// newRootCmd は clibase のルートコマンドにサブコマンドを登録します。
// サブコマンドを省略した場合は run と同じ処理を標準設定で実行します。
func newRootCmd() *cobra.Command {
	rootCmd := clibase.NewRootCmd(appName, addAppPersistentFlags, initAppPreRunE)
	rootCmd.Short = "HTTP GET の並行実行戦略を比較するベンチマークツール"
	rootCmd.Long = `同じURLリストを sequential, threads, pool, cooperative の各実行戦略でフェッチし、
所要時間と完了タスク数を比較します。サブコマンドを省略した場合は run を実行します。`
	rootCmd.Args = cobra.NoArgs
	rootCmd.SilenceUsage = true // フェッチ失敗時に使い方を表示しない
	rootCmd.Run = nil
	rootCmd.RunE = runE

	addRunFlags(rootCmd)
	rootCmd.AddCommand(runCmd, compareCmd)
	return rootCmd
}

// Execute は、ルートコマンドを実行するメイン関数です。
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

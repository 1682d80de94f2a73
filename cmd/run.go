package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shouni/go-fetch-bench/internal/pipeline"
	"github.com/shouni/go-fetch-bench/pkg/strategy"
)

// コマンドラインフラグ変数を定義
var (
	strategyName string // --strategy 実行戦略
	workers      int    // --workers 有界プールのワーカー数
	carriers     int    // --carriers 協調プールのキャリア数
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "1つの実行戦略でURLリストをフェッチし、サイズと所要時間を表示します",
	Long: `指定した実行戦略 (sequential, threads, pool, cooperative) でURLリストを1回ずつGETし、
結果が得られるたびに "URL | Size: <n> bytes" を出力します。最後に所要時間と完了タスク数を表示します。
フェッチに失敗したURLが1つでもあれば、すべての結果を出力した後に非ゼロで終了します。`,
	Args: cobra.NoArgs,
	RunE: runE,
}

// runE は run コマンドとルートコマンドの共通処理です。
func runE(cmd *cobra.Command, args []string) error {
	// 1. 対象URLの決定
	urls, err := sourceFlags.load(cmd.Context(), cmd.InOrStdin())
	if err != nil {
		return err
	}

	// 2. 実行
	cfg := benchConfig
	cfg.Workers = workers
	cfg.Carriers = carriers

	_, err = pipeline.Run(cmd.Context(), cmd.OutOrStdout(), strategyName, cfg, urls)
	return err
}

func init() {
	addRunFlags(runCmd)
}

// addRunFlags は run のフラグ (戦略・リソース量・URL取得元) を追加します。
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&strategyName, "strategy", "s", strategy.NameSequential,
		fmt.Sprintf("実行戦略 (%s)", strings.Join(strategy.Names(), ", ")))
	addPoolFlags(cmd)
	addURLFlags(cmd, &sourceFlags)
}

// addPoolFlags はワーカー数とキャリア数のフラグを追加します。
func addPoolFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&workers, "workers", "w", strategy.DefaultWorkers, "有界プールのワーカー数 (pool)")
	cmd.Flags().IntVarP(&carriers, "carriers", "m", strategy.DefaultCarriers, "協調プールのキャリアスレッド数 (cooperative)")
}

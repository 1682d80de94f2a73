package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shouni/go-fetch-bench/internal/pipeline"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "全実行戦略を同じURLリストで順番に実行し、比較表を表示します",
	Long: `sequential, threads, pool, cooperative の順に同じURLリストを実行し、
所要時間・完了数・失敗数・バイト数・使用スレッド数を表にして表示します。
個々の結果は --verbose を指定した場合にログへ出力されます。`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		urls, err := sourceFlags.load(cmd.Context(), cmd.InOrStdin())
		if err != nil {
			return err
		}

		cfg := benchConfig
		cfg.Workers = workers
		cfg.Carriers = carriers

		_, err = pipeline.Compare(cmd.Context(), cmd.OutOrStdout(), cfg, urls)
		return err
	},
}

func init() {
	addPoolFlags(compareCmd)
	addURLFlags(compareCmd, &sourceFlags)
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/shouni/go-fetch-bench/pkg/counter"
	"github.com/shouni/go-fetch-bench/pkg/fetch"
	"github.com/shouni/go-fetch-bench/pkg/strategy"
	"github.com/shouni/go-fetch-bench/pkg/types"
)

// ErrFetchFailed は実行中に1件以上のフェッチが失敗した場合に返されます。
// すべての結果を出力した後でのみ返されます。
var ErrFetchFailed = errors.New("フェッチに失敗したURLがあります")

// Config はベンチマーク実行の設定です。
type Config struct {
	Factory  fetch.Factory
	Client   strategy.ClientPolicy
	Counter  counter.Kind
	Workers  int
	Carriers int
	Verbose  bool
}

func (c Config) options(onOutcome func(types.FetchOutcome)) strategy.Options {
	return strategy.Options{
		Factory:   c.Factory,
		Client:    c.Client,
		Counter:   c.Counter,
		OnOutcome: onOutcome,
	}
}

func (c Config) params() strategy.Params {
	return strategy.Params{Workers: c.Workers, Carriers: c.Carriers}
}

// Run は1つの戦略で urls をフェッチし、結果が得られるたびに1行ずつ w に出力します。
// 最後に所要時間と完了カウンタの値を出力します。
func Run(ctx context.Context, w io.Writer, name string, cfg Config, urls []string) (types.RunReport, error) {
	// 1. 戦略の生成
	s, err := strategy.New(name, cfg.options(func(o types.FetchOutcome) {
		writeOutcome(w, o)
	}), cfg.params())
	if err != nil {
		return types.RunReport{}, err
	}

	if cfg.Verbose {
		log.Printf("実行開始 (戦略: %s, URL数: %d, クライアント: %s, カウンタ: %s)", s.Name(), len(urls), cfg.Client, cfg.Counter)
	}

	// 2. 実行
	report := s.Run(ctx, urls)

	// 3. 集計の出力
	fmt.Fprintf(w, "Total time taken: %s\n", report.Elapsed)
	fmt.Fprintf(w, "Completed tasks: %d\n", report.CounterFinal)

	return report, failure(report)
}

// Compare は全戦略を同じURLリストで順番に実行し、サマリー表を w に出力します。
// 個々の結果行は verbose の場合のみログに出力します。
func Compare(ctx context.Context, w io.Writer, cfg Config, urls []string) ([]types.RunReport, error) {
	reports := make([]types.RunReport, 0, len(strategy.Names()))

	for _, name := range strategy.Names() {
		var onOutcome func(types.FetchOutcome)
		if cfg.Verbose {
			onOutcome = func(o types.FetchOutcome) {
				log.Printf("[%s] %s", name, outcomeLine(o))
			}
		}

		s, err := strategy.New(name, cfg.options(onOutcome), cfg.params())
		if err != nil {
			return nil, err
		}

		if cfg.Verbose {
			log.Printf("実行開始 (戦略: %s, URL数: %d)", name, len(urls))
		}
		reports = append(reports, s.Run(ctx, urls))
	}

	fmt.Fprintln(w, RenderSummary(reports))

	var errs []error
	for _, r := range reports {
		if err := failure(r); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Strategy, err))
		}
	}
	return reports, errors.Join(errs...)
}

// outcomeLine は結果1件分の出力行を返します。
func outcomeLine(o types.FetchOutcome) string {
	if o.Failed() {
		return fmt.Sprintf("%s | Error: %v", o.URL, o.Err)
	}
	return fmt.Sprintf("%s | Size: %d bytes", o.URL, o.ByteSize)
}

func writeOutcome(w io.Writer, o types.FetchOutcome) {
	fmt.Fprintln(w, outcomeLine(o))
}

func failure(r types.RunReport) error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: %d/%d 件", ErrFetchFailed, r.FailedCount(), len(r.Outcomes))
}

package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/shouni/go-fetch-bench/pkg/types"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	fastestStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 1)
)

const rowFormat = "%-12s %14s %10s %7s %12s %8s"

// RenderSummary は戦略ごとの所要時間・完了数・失敗数・バイト数・スレッド数を表にして返します。
// 最も速かった戦略には印を付けます。
func RenderSummary(reports []types.RunReport) string {
	lines := []string{
		headerStyle.Render(fmt.Sprintf(rowFormat, "STRATEGY", "ELAPSED", "COMPLETED", "FAILED", "BYTES", "THREADS")),
	}

	fastest := -1
	for i, r := range reports {
		if fastest < 0 || r.Elapsed < reports[fastest].Elapsed {
			fastest = i
		}
	}

	for i, r := range reports {
		row := fmt.Sprintf(rowFormat,
			r.Strategy,
			r.Elapsed.Round(10*time.Microsecond).String(),
			fmt.Sprint(r.CounterFinal),
			fmt.Sprint(r.FailedCount()),
			fmt.Sprint(r.TotalBytes()),
			fmt.Sprint(r.DistinctThreads),
		)

		style := successStyle
		if !r.OK() {
			style = errorStyle
		}
		row = style.Render(row)
		if i == fastest {
			row += " " + fastestStyle.Render("★ fastest")
		}
		lines = append(lines, row)
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}

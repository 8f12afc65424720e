package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/ecg-pomodoro/backend/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintSummary prints the headline numbers of a session summary
func PrintSummary(s *contracts.SessionSummary) {
	status := "✅ signal ok"
	if !s.Quality.SignalOK {
		status = "⚠️  signal unreliable"
	}

	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  Session %s (user %s)\n", s.SessionID, s.UserID)
	PrintSeparator()
	fmt.Printf("  Duration  : %ds\n", s.DurationS)
	fmt.Printf("  Quality   : %s (index %.4f, missing %.6f)\n", status, s.Quality.QualityIndexMean, s.Quality.MissingRatio)
	fmt.Printf("  HR        : mean %.2f / min %.2f / max %.2f bpm\n", s.HRSummary.MeanBpm, s.HRSummary.MinBpm, s.HRSummary.MaxBpm)
	fmt.Printf("  HRV       : RMSSD %.2f ms, SDNN %.2f ms\n", s.HRVTime.RMSSDMs, s.HRVTime.SDNNMs)
	fmt.Printf("  RR        : n=%d mean %.2f ms, outliers %.3f\n", s.RRSummary.N, s.RRSummary.MeanMs, s.RRSummary.OutlierRatio)
	fmt.Printf("  Notes     : %s\n", strings.Join(s.Quality.Notes, " | "))
	PrintDoubleSeparator()
}

// PrintTrendTable prints one row per segment of the trend
func PrintTrendTable(s *contracts.SessionSummary) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"t (s)", "HR (bpm)", "RMSSD (ms)", "SDNN (ms)", "Quality", "OK"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, p := range s.Trend {
		ok := "yes"
		if !p.SignalOK {
			ok = "no"
		}
		data = append(data, []string{
			fmt.Sprintf("%d", p.TOffsetS),
			fmtMetric(p.MeanHRBpm),
			fmtMetric(p.RMSSDMs),
			fmtMetric(p.SDNNMs),
			fmt.Sprintf("%.4f", p.QualityIndexMean),
			ok,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// PrintBaselineTable prints per-hour baselines
func PrintBaselineTable(baselines []contracts.UserBaseline) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"User", "Hour", "Avg HR", "Avg SDNN", "Sessions"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, b := range baselines {
		data = append(data, []string{
			b.UserID,
			fmt.Sprintf("%02d:00", b.PeriodStartHour),
			fmt.Sprintf("%.2f", b.AvgHR),
			fmt.Sprintf("%.2f", b.AvgSDNN),
			fmt.Sprintf("%d", b.SessionCount),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// fmtMetric prints "-" for withheld (zero) metrics
func fmtMetric(v float64) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Printf("⚠️  %s\n", message)
}

// Package export writes session trends to Parquet for offline analysis
// using github.com/parquet-go/parquet-go.
package export

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/ecg-pomodoro/backend/internal/contracts"
)

// TrendRow is one trend point flattened with its session keys
type TrendRow struct {
	UserID    string `parquet:"user_id,snappy,dict"`
	SessionID string `parquet:"session_id,snappy,dict"`

	// SegmentTime is work start + offset (stored as TIMESTAMP)
	SegmentTime time.Time `parquet:"segment_time,snappy"`
	TOffsetS    int64     `parquet:"t_offset_s,snappy"`

	MeanHRBpm        float64 `parquet:"mean_hr_bpm,snappy"`
	RMSSDMs          float64 `parquet:"rmssd_ms,snappy"`
	SDNNMs           float64 `parquet:"sdnn_ms,snappy"`
	QualityIndexMean float64 `parquet:"quality_index_mean,snappy"`
	SignalOK         bool    `parquet:"signal_ok,snappy"`
}

// TrendRows flattens the trends of the given summaries in order
func TrendRows(summaries ...*contracts.SessionSummary) []TrendRow {
	var rows []TrendRow
	for _, s := range summaries {
		if s == nil {
			continue
		}
		start := time.UnixMilli(s.WorkStartUnixMs).UTC()
		for _, p := range s.Trend {
			rows = append(rows, TrendRow{
				UserID:           s.UserID,
				SessionID:        s.SessionID,
				SegmentTime:      start.Add(time.Duration(p.TOffsetS) * time.Second),
				TOffsetS:         p.TOffsetS,
				MeanHRBpm:        p.MeanHRBpm,
				RMSSDMs:          p.RMSSDMs,
				SDNNMs:           p.SDNNMs,
				QualityIndexMean: p.QualityIndexMean,
				SignalOK:         p.SignalOK,
			})
		}
	}
	return rows
}

// WriteTrend writes rows as a Parquet file to w
func WriteTrend(w io.Writer, rows []TrendRow) error {
	writer := parquet.NewGenericWriter[TrendRow](w)

	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write trend rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteTrendFile writes the trends of summaries to path and returns the row count
func WriteTrendFile(path string, summaries ...*contracts.SessionSummary) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	rows := TrendRows(summaries...)
	if err := WriteTrend(file, rows); err != nil {
		return 0, err
	}
	return len(rows), file.Sync()
}

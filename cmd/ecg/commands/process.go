package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/internal/export"
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process [work.json]",
	Short: "세션 요청 파일 오프라인 처리",
	Long: `pomodoro-work/v1 JSON 파일을 읽어 세션 요약을 계산합니다.

저장/발행 없이 파이프라인만 실행합니다.

Example:
  go run ./cmd/ecg process work.json
  go run ./cmd/ecg process work.json --json > summary.json
  go run ./cmd/ecg process work.json --parquet trend.parquet`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

var (
	processParquet string
	processJSON    bool
)

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&processParquet, "parquet", "", "트렌드를 Parquet 파일로 저장")
	processCmd.Flags().BoolVar(&processJSON, "json", false, "요약을 JSON으로 출력")
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	req, err := readWorkRequest(args[0])
	if err != nil {
		return err
	}

	summary, err := p.aggregator.Aggregate(contextOrBackground(cmd.Context()), req)
	if err != nil {
		return fmt.Errorf("aggregate session: %w", err)
	}

	return emitSummary(summary, processJSON, processParquet)
}

func readWorkRequest(path string) (*contracts.WorkRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read work request: %w", err)
	}
	var req contracts.WorkRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode work request: %w", err)
	}
	return &req, nil
}

// emitSummary prints the summary (table or JSON) and optionally exports the trend
func emitSummary(summary *contracts.SessionSummary, asJSON bool, parquetPath string) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return err
		}
	} else {
		PrintSummary(summary)
		if err := PrintTrendTable(summary); err != nil {
			return err
		}
	}

	if parquetPath != "" {
		n, err := export.WriteTrendFile(parquetPath, summary)
		if err != nil {
			return err
		}
		// JSON 출력과 섞이지 않도록 stderr
		fmt.Fprintf(os.Stderr, "💾 Wrote %d trend rows to %s\n", n, parquetPath)
	}
	return nil
}

// contextOrBackground covers commands invoked without a cobra context (tests)
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	pipelineFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ecg",
	Short: "ECG/HRV 포모도로 피처 파이프라인",
	Long: `ECG Pomodoro Feature Pipeline CLI

짧은 ECG 세그먼트에서 품질/R-peak/HRV 피처를 추출하고,
작업 세션(포모도로) 단위 요약을 생성합니다.

Usage:
  go run ./cmd/ecg [command]

Examples:
  go run ./cmd/ecg api
  go run ./cmd/ecg process work.json --parquet trend.parquet
  go run ./cmd/ecg demo --minutes 5
  go run ./cmd/ecg baseline --once
  go run ./cmd/ecg test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&pipelineFile, "pipeline", "", "thresholds YAML (overrides PIPELINE_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
}

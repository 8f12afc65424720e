package main

import (
	"os"

	"github.com/ecg-pomodoro/backend/cmd/ecg/commands"
)

// main is the entry point for the ECG pipeline CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/ecg [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

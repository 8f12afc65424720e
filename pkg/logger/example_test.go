package logger_test

import (
	"errors"

	"github.com/ecg-pomodoro/backend/pkg/config"
	"github.com/ecg-pomodoro/backend/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("Service started")
	log.Infof("Processing %d segments", 25)
}

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	log := logger.New(&config.Config{Env: "production", LogLevel: "info", LogFormat: "json"})

	segLog := log.WithModule("segment").WithFields(map[string]interface{}{
		"segment_id": "work_1700000000000",
		"n_peaks":    41,
	})
	segLog.Info("Segment processed")

	log.WithError(errors.New("broker unreachable")).Warn("Summary publish failed")
}

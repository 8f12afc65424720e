package commands

import (
	"fmt"

	"github.com/ecg-pomodoro/backend/internal/capability/remote"
	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/internal/dsp"
	"github.com/ecg-pomodoro/backend/internal/pipelineconfig"
	"github.com/ecg-pomodoro/backend/internal/segment"
	"github.com/ecg-pomodoro/backend/internal/session"
	"github.com/ecg-pomodoro/backend/pkg/config"
	"github.com/ecg-pomodoro/backend/pkg/logger"
)

// pipeline bundles the pieces every command needs
type pipeline struct {
	cfg        *config.Config
	thresholds *pipelineconfig.Config
	hash       string
	builder    *segment.Builder
	aggregator *session.Aggregator
	log        *logger.Logger
}

// loadConfig reads env config and applies global flags
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if pipelineFile != "" {
		cfg.Pipeline.File = pipelineFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, logger.New(cfg), nil
}

// buildPipeline wires thresholds and signal capabilities into a builder and aggregator
func buildPipeline(cfg *config.Config, log *logger.Logger) (*pipeline, error) {
	thresholds, err := pipelineconfig.LoadOrDefault(cfg.Pipeline.File)
	if err != nil {
		return nil, err
	}
	hash, err := pipelineconfig.Hash(thresholds)
	if err != nil {
		return nil, fmt.Errorf("hash pipeline config: %w", err)
	}

	var (
		conditioner contracts.Conditioner
		scorer      contracts.QualityScorer
		detector    contracts.PeakDetector
	)
	if cfg.SignalServiceURL != "" {
		client := remote.New(cfg.SignalServiceURL, "", log)
		conditioner, scorer, detector = client, client, client
	} else {
		pt := dsp.NewPanTompkins()
		conditioner, scorer, detector = dsp.NewConditioner(), dsp.NewTemplateQuality(pt), pt
	}

	builder := segment.NewBuilder(conditioner, scorer, detector, thresholds.Segment, log)

	log.WithFields(map[string]interface{}{
		"pipeline_file": cfg.Pipeline.File,
		"pipeline_hash": hash,
		"rpeak_method":  builder.Method(),
		"workers":       cfg.Pipeline.Workers,
		"remote":        cfg.SignalServiceURL != "",
	}).Info("Pipeline initialized")

	return &pipeline{
		cfg:        cfg,
		thresholds: thresholds,
		hash:       hash,
		builder:    builder,
		aggregator: session.NewAggregator(builder, thresholds, cfg.Pipeline.Workers, log),
		log:        log,
	}, nil
}

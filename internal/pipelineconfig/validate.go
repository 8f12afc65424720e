package pipelineconfig

import "fmt"

// ValidationError names the offending field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all threshold ranges
func Validate(cfg *Config) error {
	// === Segment ===
	if cfg.Segment.ChannelIndex < 0 {
		return ValidationError{"segment.channel_index", "must be >= 0"}
	}
	if cfg.Segment.MinSamples < 1 {
		return ValidationError{"segment.min_samples", "must be >= 1"}
	}
	if cfg.Segment.MinPeaksForHRV < 3 {
		return ValidationError{"segment.min_peaks_for_hrv", "must be >= 3"}
	}
	if cfg.Segment.HighMissingRatio < 0 || cfg.Segment.HighMissingRatio > 1 {
		return ValidationError{"segment.high_missing_ratio", "must be in [0, 1]"}
	}
	if cfg.Segment.OutlierRelDeviation <= 0 {
		return ValidationError{"segment.outlier_rel_deviation", "must be > 0"}
	}

	// === Session ===
	if cfg.Session.MinReliableRatio < 0 || cfg.Session.MinReliableRatio > 1 {
		return ValidationError{"session.min_reliable_ratio", "must be in [0, 1]"}
	}
	if cfg.Session.MinRRCount < 0 {
		return ValidationError{"session.min_rr_count", "must be >= 0"}
	}
	return nil
}

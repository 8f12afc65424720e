// Package pipelineconfig holds the numeric thresholds of the feature pipeline.
package pipelineconfig

// Config is the thresholds file (configs/pipeline.yaml)
// ⭐ SSOT: 신뢰도 정책 임계값은 여기서만 정의
type Config struct {
	Segment SegmentConfig `yaml:"segment" json:"segment"`
	Session SessionConfig `yaml:"session" json:"session"`
}

// SegmentConfig drives the per-segment reliability policy
type SegmentConfig struct {
	ChannelIndex        int     `yaml:"channel_index" json:"channel_index"`
	MinSamples          int     `yaml:"min_samples" json:"min_samples"`
	MinPeaksForHRV      int     `yaml:"min_peaks_for_hrv" json:"min_peaks_for_hrv"`
	HighMissingRatio    float64 `yaml:"high_missing_ratio" json:"high_missing_ratio"`
	OutlierRelDeviation float64 `yaml:"outlier_rel_deviation" json:"outlier_rel_deviation"`
}

// SessionConfig drives the session-level reliability decision
type SessionConfig struct {
	MinReliableRatio float64 `yaml:"min_reliable_ratio" json:"min_reliable_ratio"`
	MinRRCount       int     `yaml:"min_rr_count" json:"min_rr_count"`
}

// Default returns the built-in thresholds
func Default() *Config {
	return &Config{
		Segment: SegmentConfig{
			ChannelIndex:        0,
			MinSamples:          2000,
			MinPeaksForHRV:      3,
			HighMissingRatio:    0.05,
			OutlierRelDeviation: 0.2,
		},
		Session: SessionConfig{
			MinReliableRatio: 0.7,
			MinRRCount:       10,
		},
	}
}

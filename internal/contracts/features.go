package contracts

// QualityReport is the reliability verdict for a segment or a whole session
type QualityReport struct {
	SignalOK         bool     `json:"signal_ok"`
	MissingRatio     float64  `json:"missing_ratio"`      // 0.0 ~ 1.0, measured before conditioning
	QualityIndexMean float64  `json:"quality_index_mean"` // 0.0 ~ 1.0
	Notes            []string `json:"notes"`              // de-duplicated, first-seen order
}

// RPeaks is the detected beat set of one segment
type RPeaks struct {
	Method  string `json:"method"`
	Indices []int  `json:"indices"` // strictly increasing, segment-local
}

// HRVMetrics holds time-domain HRV values
type HRVMetrics struct {
	MeanHRBpm float64 `json:"mean_hr_bpm"`
	RMSSDMs   float64 `json:"rmssd_ms"`
	SDNNMs    float64 `json:"sdnn_ms"`
}

// IsZero reports whether no HRV was computed
func (h HRVMetrics) IsZero() bool {
	return h.MeanHRBpm == 0 && h.RMSSDMs == 0 && h.SDNNMs == 0
}

// RRSummary describes the distribution of an RR series
type RRSummary struct {
	N            int     `json:"n"`
	MeanMs       float64 `json:"mean_ms"`
	StdMs        float64 `json:"std_ms"`
	MinMs        float64 `json:"min_ms"`
	MaxMs        float64 `json:"max_ms"`
	OutlierRatio float64 `json:"outlier_ratio"`
}

// HRSummary is computed from per-beat heart rate (60000 / RR)
type HRSummary struct {
	MeanBpm float64 `json:"mean_bpm"`
	MinBpm  float64 `json:"min_bpm"`
	MaxBpm  float64 `json:"max_bpm"`
}

// SegmentFeature is the per-segment output record
// ⭐ SSOT: 세그먼트 → 세션 전달 (생성 후 불변)
type SegmentFeature struct {
	SchemaVersion string        `json:"schema_version"`
	SegmentID     string        `json:"segment_id"`
	Quality       QualityReport `json:"quality"`
	RPeaks        RPeaks        `json:"rpeaks"`
	HRVTime       HRVMetrics    `json:"hrv_time"`
}

// TrendPoint is one per-segment snapshot inside a session
type TrendPoint struct {
	TOffsetS         int64   `json:"t_offset_s"` // seconds from work start, >= 0
	MeanHRBpm        float64 `json:"mean_hr_bpm"`
	RMSSDMs          float64 `json:"rmssd_ms"`
	SDNNMs           float64 `json:"sdnn_ms"`
	QualityIndexMean float64 `json:"quality_index_mean"`
	SignalOK         bool    `json:"signal_ok"`
}

// SessionSummary is the session-level output record
// ⭐ SSOT: 세션 요약 (한 번 생성, 이후 변경 없음)
type SessionSummary struct {
	SchemaVersion   string        `json:"schema_version"`
	UserID          string        `json:"user_id"`
	SessionID       string        `json:"session_id"`
	WorkStartUnixMs int64         `json:"work_start_unix_ms"`
	WorkEndUnixMs   int64         `json:"work_end_unix_ms"`
	DurationS       int64         `json:"duration_s"`
	Quality         QualityReport `json:"quality"`
	HRSummary       HRSummary     `json:"hr_summary"`
	HRVTime         HRVMetrics    `json:"hrv_time"`
	RRSummary       RRSummary     `json:"rr_summary"`
	Trend           []TrendPoint  `json:"trend_1min"`
}

// UserBaseline is a per-user, per-hour-of-day reference level
type UserBaseline struct {
	UserID          string  `json:"user_id"`
	PeriodStartHour int     `json:"period_start_hour"` // 0 ~ 23 (UTC)
	AvgHR           float64 `json:"avg_hr"`
	AvgSDNN         float64 `json:"avg_sdnn"`
	SessionCount    int     `json:"session_count"`
	LastUpdated     int64   `json:"last_updated"` // unix seconds
}

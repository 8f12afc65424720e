package contracts

// Schema versions carried on every inbound/outbound record
const (
	SchemaSegment = "ecg-seg/v1"
	SchemaFeature = "ecg-feat/v1"
	SchemaWork    = "pomodoro-work/v1"
	SchemaSummary = "pomodoro-summary/v1"
)

// Channel is metadata for one signal channel
type Channel struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
	Lead string `json:"lead,omitempty"`
}

// RawSegment is one short ECG segment as submitted by the client
// ⭐ SSOT: 파이프라인 입력 (read-only)
type RawSegment struct {
	SchemaVersion   string      `json:"schema_version"`
	SegmentID       string      `json:"segment_id"`
	SamplingRateHz  int         `json:"sampling_rate_hz"`
	StartTimeUnixMs int64       `json:"start_time_unix_ms"`
	Channels        []Channel   `json:"channels"`
	Samples         [][]float64 `json:"samples"` // [N, C], one row per sample time
}

// WorkRequest closes one work session (pomodoro) and carries all its segments
type WorkRequest struct {
	SchemaVersion   string       `json:"schema_version"`
	UserID          string       `json:"user_id"`
	SessionID       string       `json:"session_id"`
	WorkStartUnixMs int64        `json:"work_start_unix_ms"`
	WorkEndUnixMs   int64        `json:"work_end_unix_ms"`
	Segments        []RawSegment `json:"segments"` // client order is not trusted
}

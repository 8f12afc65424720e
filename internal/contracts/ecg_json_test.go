package contracts

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestRawSegment_NullSamplesDecodeAsNaN(t *testing.T) {
	data := `{"schema_version":"ecg-seg/v1","segment_id":"a","sampling_rate_hz":250,
		"start_time_unix_ms":5,"channels":[{"name":"ECG","unit":"mV"}],
		"samples":[[0.1],[null],[0.3]]}`

	var seg RawSegment
	if err := json.Unmarshal([]byte(data), &seg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if seg.SegmentID != "a" || seg.SamplingRateHz != 250 || seg.StartTimeUnixMs != 5 {
		t.Errorf("metadata not decoded: %+v", seg)
	}
	if len(seg.Channels) != 1 || seg.Channels[0].Unit != "mV" {
		t.Errorf("channels not decoded: %+v", seg.Channels)
	}
	if len(seg.Samples) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(seg.Samples))
	}
	if seg.Samples[0][0] != 0.1 || seg.Samples[2][0] != 0.3 {
		t.Errorf("finite samples changed: %v", seg.Samples)
	}
	if !math.IsNaN(seg.Samples[1][0]) {
		t.Errorf("null sample should decode as NaN, got %v", seg.Samples[1][0])
	}
}

func TestRawSegment_MarshalNaNAsNull(t *testing.T) {
	seg := RawSegment{
		SegmentID:      "b",
		SamplingRateHz: 100,
		Samples:        [][]float64{{1}, {math.NaN()}, {math.Inf(1)}},
	}

	data, err := json.Marshal(seg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"samples":[[1],[null],[null]]`) {
		t.Errorf("unexpected encoding: %s", data)
	}

	var back RawSegment
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.SegmentID != "b" || !math.IsNaN(back.Samples[1][0]) {
		t.Errorf("round trip lost data: %+v", back)
	}
}

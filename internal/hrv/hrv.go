// Package hrv holds the RR / HRV numeric core.
// Inputs are raw (unrounded) values; rounding happens only in the *Record helpers.
package hrv

import (
	"math"
	"sort"

	"github.com/ecg-pomodoro/backend/internal/contracts"
)

// Defaults used when no thresholds file overrides them
const (
	DefaultMinPeaks            = 3
	DefaultOutlierRelDeviation = 0.2
)

// =============================================================================
// RR intervals
// =============================================================================

// RRIntervals converts beat indices into millisecond intervals.
// len(result) == len(peaks)-1, empty when fewer than 2 peaks.
func RRIntervals(peaks []int, samplingRateHz int) []float64 {
	if len(peaks) < 2 || samplingRateHz <= 0 {
		return []float64{}
	}

	fs := float64(samplingRateHz)
	rr := make([]float64, 0, len(peaks)-1)
	for i := 0; i+1 < len(peaks); i++ {
		rr = append(rr, float64(peaks[i+1]-peaks[i])/fs*1000.0)
	}
	return rr
}

// =============================================================================
// Time-domain HRV
// =============================================================================

// Compute returns mean HR, RMSSD and SDNN of an RR series.
// Fewer than 2 RR values gives the zero value.
func Compute(rr []float64) contracts.HRVMetrics {
	if len(rr) < 2 {
		return contracts.HRVMetrics{}
	}

	m := Mean(rr)
	if m <= 0 {
		return contracts.HRVMetrics{}
	}

	// RMSSD: 연속 차이 제곱 평균의 제곱근
	var sumSq float64
	for i := 1; i < len(rr); i++ {
		d := rr[i] - rr[i-1]
		sumSq += d * d
	}

	return contracts.HRVMetrics{
		MeanHRBpm: 60000.0 / m,
		RMSSDMs:   math.Sqrt(sumSq / float64(len(rr)-1)),
		SDNNMs:    PopStd(rr),
	}
}

// ComputeFromPeaks applies the minimum-peaks policy before computing HRV.
// ok is false when fewer than minPeaks beats were found; metrics are then zero.
func ComputeFromPeaks(peaks []int, samplingRateHz, minPeaks int) (metrics contracts.HRVMetrics, ok bool) {
	if len(peaks) < minPeaks {
		return contracts.HRVMetrics{}, false
	}
	return Compute(RRIntervals(peaks, samplingRateHz)), true
}

// =============================================================================
// RR summary
// =============================================================================

// Summarize describes the distribution of an RR series.
// relDeviation is the outlier threshold relative to the median (0.2 by default).
func Summarize(rr []float64, relDeviation float64) contracts.RRSummary {
	if len(rr) == 0 {
		return contracts.RRSummary{}
	}

	return contracts.RRSummary{
		N:            len(rr),
		MeanMs:       Mean(rr),
		StdMs:        PopStd(rr),
		MinMs:        minOf(rr),
		MaxMs:        maxOf(rr),
		OutlierRatio: OutlierRatio(rr, relDeviation),
	}
}

// OutlierRatio is the fraction of RR values with |rr-median|/median > relDeviation.
// Zero when the median is not positive.
func OutlierRatio(rr []float64, relDeviation float64) float64 {
	if len(rr) == 0 {
		return 0
	}

	med := Median(rr)
	if med <= 0 {
		return 0
	}

	outliers := 0
	for _, v := range rr {
		if math.Abs(v-med)/med > relDeviation {
			outliers++
		}
	}
	return float64(outliers) / float64(len(rr))
}

// HeartRate summarizes per-beat heart rate (60000 / RR) over every RR value.
// Non-positive RR values are skipped.
func HeartRate(rr []float64) contracts.HRSummary {
	beats := make([]float64, 0, len(rr))
	for _, v := range rr {
		if v > 0 {
			beats = append(beats, 60000.0/v)
		}
	}
	if len(beats) == 0 {
		return contracts.HRSummary{}
	}

	return contracts.HRSummary{
		MeanBpm: Mean(beats),
		MinBpm:  minOf(beats),
		MaxBpm:  maxOf(beats),
	}
}

// =============================================================================
// 통계 유틸리티
// =============================================================================

// Mean is the arithmetic mean (0 for empty input)
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// PopStd is the population standard deviation (divisor N)
func PopStd(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// Median of a copy of values (0 for empty input)
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// NanMean ignores non-finite values; ok is false when nothing finite remains
func NanMean(values []float64) (mean float64, ok bool) {
	var sum float64
	n := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func minOf(values []float64) float64 {
	out := values[0]
	for _, v := range values[1:] {
		if v < out {
			out = v
		}
	}
	return out
}

func maxOf(values []float64) float64 {
	out := values[0]
	for _, v := range values[1:] {
		if v > out {
			out = v
		}
	}
	return out
}

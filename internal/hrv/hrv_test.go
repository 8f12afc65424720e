package hrv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRRIntervals(t *testing.T) {
	tests := []struct {
		name  string
		peaks []int
		fs    int
		want  []float64
	}{
		{"no peaks", nil, 250, []float64{}},
		{"single peak", []int{100}, 250, []float64{}},
		{"two peaks", []int{0, 200}, 250, []float64{800}},
		{"three peaks at 500Hz", []int{0, 400, 810}, 500, []float64{800, 820}},
		{"invalid rate", []int{0, 200}, 0, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RRIntervals(tt.peaks, tt.fs)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-9)
			}
		})
	}
}

func TestRRIntervals_LengthIsPeaksMinusOne(t *testing.T) {
	peaks := []int{10, 260, 515, 760, 1010, 1262}
	assert.Len(t, RRIntervals(peaks, 250), len(peaks)-1)
}

func TestCompute(t *testing.T) {
	rr := []float64{800, 820, 810, 790}
	m := Compute(rr)

	assert.InDelta(t, 60000.0/805.0, m.MeanHRBpm, 1e-9)
	// diffs: 20, -10, -20 → mean sq = (400+100+400)/3 = 300
	assert.InDelta(t, math.Sqrt(300), m.RMSSDMs, 1e-9)
	// deviations: -5, 15, 5, -15 → pop var = (25+225+25+225)/4 = 125
	assert.InDelta(t, math.Sqrt(125), m.SDNNMs, 1e-9)
}

func TestCompute_NonNegative(t *testing.T) {
	series := [][]float64{
		{1000, 1000},
		{600, 1200, 700},
		{812.5, 799.1, 845.0, 790.2, 801.7},
	}
	for _, rr := range series {
		m := Compute(rr)
		assert.GreaterOrEqual(t, m.RMSSDMs, 0.0)
		assert.GreaterOrEqual(t, m.SDNNMs, 0.0)
		assert.InDelta(t, 60000.0/Mean(rr), m.MeanHRBpm, 1e-9)
	}
}

func TestCompute_TooFewIntervals(t *testing.T) {
	assert.True(t, Compute(nil).IsZero())
	assert.True(t, Compute([]float64{800}).IsZero())
}

func TestComputeFromPeaks_MinPeaksPolicy(t *testing.T) {
	// 2 peaks → 1 RR value exists, but the policy still zeroes HRV
	m, ok := ComputeFromPeaks([]int{0, 200}, 250, DefaultMinPeaks)
	assert.False(t, ok)
	assert.True(t, m.IsZero())

	m, ok = ComputeFromPeaks([]int{0, 200, 405}, 250, DefaultMinPeaks)
	assert.True(t, ok)
	assert.InDelta(t, 60000.0/810.0, m.MeanHRBpm, 1e-9)
}

func TestSummarize(t *testing.T) {
	rr := []float64{800, 820, 810, 790, 1200}
	s := Summarize(rr, DefaultOutlierRelDeviation)

	assert.Equal(t, 5, s.N)
	assert.InDelta(t, 884.0, s.MeanMs, 1e-9)
	assert.Equal(t, 790.0, s.MinMs)
	assert.Equal(t, 1200.0, s.MaxMs)
	// median 810, |1200-810|/810 = 0.48 > 0.2
	assert.InDelta(t, 0.2, s.OutlierRatio, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, DefaultOutlierRelDeviation)
	assert.Equal(t, 0, s.N)
	assert.Equal(t, 0.0, s.OutlierRatio)
}

func TestOutlierRatio_ScaleInvariant(t *testing.T) {
	rr := []float64{800, 640, 820, 1100, 790, 805, 560}
	base := OutlierRatio(rr, DefaultOutlierRelDeviation)

	for _, k := range []float64{0.5, 1.7, 3, 1000} {
		scaled := make([]float64, len(rr))
		for i, v := range rr {
			scaled[i] = v * k
		}
		assert.InDelta(t, base, OutlierRatio(scaled, DefaultOutlierRelDeviation), 1e-12, "scale %v", k)
	}
}

func TestOutlierRatio_NonPositiveMedian(t *testing.T) {
	assert.Equal(t, 0.0, OutlierRatio([]float64{0, 0, 0}, 0.2))
	assert.Equal(t, 0.0, OutlierRatio([]float64{-10, -20, -30}, 0.2))
}

func TestHeartRate_PerBeat(t *testing.T) {
	rr := []float64{1000, 500}
	hr := HeartRate(rr)

	// per-beat 60 and 120 → mean 90, while 60000/mean(RR) would be 80
	assert.InDelta(t, 90.0, hr.MeanBpm, 1e-9)
	assert.InDelta(t, 60.0, hr.MinBpm, 1e-9)
	assert.InDelta(t, 120.0, hr.MaxBpm, 1e-9)
}

func TestHeartRate_Empty(t *testing.T) {
	assert.Equal(t, 0.0, HeartRate(nil).MeanBpm)
	assert.Equal(t, 0.0, HeartRate([]float64{0}).MaxBpm)
}

func TestNanMean(t *testing.T) {
	m, ok := NanMean([]float64{0.5, math.NaN(), 1.0, math.Inf(1)})
	assert.True(t, ok)
	assert.InDelta(t, 0.75, m, 1e-12)

	_, ok = NanMean([]float64{math.NaN()})
	assert.False(t, ok)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))

	in := []float64{3, 1, 2}
	Median(in)
	assert.Equal(t, []float64{3, 1, 2}, in, "input must not be reordered")
}

func TestRound(t *testing.T) {
	assert.Equal(t, 74.53, Round(74.5342, 2))
	assert.Equal(t, 0.123, Round(0.12345, 3))
	assert.Equal(t, 0.0, Round(math.NaN(), 2))
}

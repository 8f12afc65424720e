package dsp

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/internal/hrv"
)

const fs = 250

func simulated(t *testing.T, seconds int, noise float64) []float64 {
	t.Helper()
	sim := NewSimulator(fs, 75, 0, noise, 7)
	raw := sim.Samples(seconds * fs)

	cleaned, err := NewConditioner().Clean(context.Background(), raw, fs)
	require.NoError(t, err)
	return cleaned
}

func TestDetrend_RemovesRamp(t *testing.T) {
	x := make([]float64, 100)
	for i := range x {
		x[i] = 3 + 0.5*float64(i)
	}
	for _, v := range Detrend(x) {
		assert.InDelta(t, 0, v, 1e-9)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4, 5}, 3)
	assert.InDeltaSlice(t, []float64{1.5, 2, 3, 4, 4.5}, got, 1e-12)

	same := MovingAverage([]float64{1, 2}, 1)
	assert.Equal(t, []float64{1, 2}, same)
}

func TestFindPeaks(t *testing.T) {
	x := []float64{0, 1, 0, 3, 0, 2, 0}

	assert.Equal(t, []int{1, 3, 5}, FindPeaks(x, 0.5, 1))
	assert.Equal(t, []int{3, 5}, FindPeaks(x, 1.5, 1))
	assert.Equal(t, []int{3}, FindPeaks(x, 0.5, 3))
}

func TestConditioner_RejectsMalformedInput(t *testing.T) {
	c := NewConditioner()
	ctx := context.Background()

	_, err := c.Clean(ctx, []float64{1, 2, 3}, 0)
	assert.Error(t, err)
	_, err = c.Clean(ctx, []float64{1, 2}, fs)
	assert.Error(t, err)
	_, err = c.Clean(ctx, []float64{1, math.NaN(), 3}, fs)
	assert.Error(t, err)
}

func TestConditioner_PreservesLength(t *testing.T) {
	raw := NewSimulator(fs, 60, 0, 0.02, 1).Samples(1000)
	cleaned, err := NewConditioner().Clean(context.Background(), raw, fs)
	require.NoError(t, err)
	assert.Len(t, cleaned, len(raw))
}

func TestPanTompkins_SimulatedRhythm(t *testing.T) {
	cleaned := simulated(t, 30, 0.01)

	peaks, err := NewPanTompkins().Detect(context.Background(), cleaned, fs)
	require.NoError(t, err)

	// 75 bpm for 30 s → 38 R waves, the first at sample ~63
	assert.InDelta(t, 38, len(peaks), 2)
	for i := 1; i < len(peaks); i++ {
		require.Greater(t, peaks[i], peaks[i-1])
	}

	rr := hrv.RRIntervals(peaks, fs)
	assert.InDelta(t, 800, hrv.Mean(rr), 10)
}

func TestPanTompkins_FlatSignal(t *testing.T) {
	_, err := NewPanTompkins().Detect(context.Background(), make([]float64, 3000), fs)
	assert.True(t, errors.Is(err, contracts.ErrPeakDetection))
}

func TestPanTompkins_Method(t *testing.T) {
	assert.Equal(t, MethodPanTompkins, NewPanTompkins().Method())
}

func TestTemplateQuality_CleanSignalScoresHigh(t *testing.T) {
	cleaned := simulated(t, 20, 0.01)

	scores, err := NewTemplateQuality(NewPanTompkins()).Score(context.Background(), cleaned, fs)
	require.NoError(t, err)
	require.Len(t, scores, len(cleaned))

	mean, ok := hrv.NanMean(scores)
	require.True(t, ok)
	assert.Greater(t, mean, 0.8)
	for _, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0+1e-9)
	}
}

func TestTemplateQuality_FlatSignalFails(t *testing.T) {
	_, err := NewTemplateQuality(NewPanTompkins()).Score(context.Background(), make([]float64, 3000), fs)
	assert.True(t, errors.Is(err, contracts.ErrQualityComputation))
}

func TestSimulator_Reproducible(t *testing.T) {
	a := NewSimulator(fs, 70, 3, 0.02, 42).Samples(500)
	b := NewSimulator(fs, 70, 3, 0.02, 42).Samples(500)
	assert.Equal(t, a, b)
}

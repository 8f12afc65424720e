// Package dsp provides the in-process signal capabilities: conditioner,
// quality scorer and R-peak detector, plus a synthetic ECG generator.
package dsp

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Conditioner removes linear trend and baseline wander, then lightly smooths.
type Conditioner struct {
	BaselineWindow time.Duration
	SmoothWindow   time.Duration
}

// NewConditioner returns a conditioner with 750 ms baseline and 12 ms smoothing windows
func NewConditioner() *Conditioner {
	return &Conditioner{
		BaselineWindow: 750 * time.Millisecond,
		SmoothWindow:   12 * time.Millisecond,
	}
}

// Clean implements contracts.Conditioner
func (c *Conditioner) Clean(ctx context.Context, signal []float64, samplingRateHz int) ([]float64, error) {
	if samplingRateHz < 1 {
		return nil, fmt.Errorf("invalid sampling rate %d", samplingRateHz)
	}
	if len(signal) < 3 {
		return nil, fmt.Errorf("signal too short to condition: %d samples", len(signal))
	}
	for _, v := range signal {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("signal contains non-finite samples")
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x := Detrend(signal)

	baseline := MovingAverage(x, windowSamples(c.BaselineWindow, samplingRateHz))
	for i := range x {
		x[i] -= baseline[i]
	}

	return MovingAverage(x, windowSamples(c.SmoothWindow, samplingRateHz)), nil
}

// Detrend subtracts the least-squares line from a copy of x
func Detrend(x []float64) []float64 {
	n := float64(len(x))
	out := make([]float64, len(x))
	if len(x) < 2 {
		copy(out, x)
		return out
	}

	var sumT, sumX, sumTT, sumTX float64
	for i, v := range x {
		t := float64(i)
		sumT += t
		sumX += v
		sumTT += t * t
		sumTX += t * v
	}
	slope := (n*sumTX - sumT*sumX) / (n*sumTT - sumT*sumT)
	intercept := (sumX - slope*sumT) / n

	for i, v := range x {
		out[i] = v - (intercept + slope*float64(i))
	}
	return out
}

// MovingAverage is a centered average over w samples; the window shrinks at the edges
func MovingAverage(x []float64, w int) []float64 {
	out := make([]float64, len(x))
	if w <= 1 {
		copy(out, x)
		return out
	}

	prefix := make([]float64, len(x)+1)
	for i, v := range x {
		prefix[i+1] = prefix[i] + v
	}

	half := w / 2
	for i := range x {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + (w - half) // exclusive
		if hi > len(x) {
			hi = len(x)
		}
		out[i] = (prefix[hi] - prefix[lo]) / float64(hi-lo)
	}
	return out
}

func windowSamples(d time.Duration, samplingRateHz int) int {
	w := int(math.Round(d.Seconds() * float64(samplingRateHz)))
	if w < 1 {
		return 1
	}
	return w
}

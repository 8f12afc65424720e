package dsp

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ecg-pomodoro/backend/internal/contracts"
)

// MethodPanTompkins names the built-in detector in output records
const MethodPanTompkins = "pan-tompkins"

// PanTompkins detects R-peaks from the integrated squared derivative.
// Candidates must exceed HeightFactor × mean energy and be at least
// Refractory apart; each is then snapped to the largest |x| nearby.
type PanTompkins struct {
	IntegrationWindow time.Duration
	Refractory        time.Duration
	SearchWindow      time.Duration
	HeightFactor      float64
}

// NewPanTompkins returns a detector with 120 ms integration and 300 ms refractory period
func NewPanTompkins() *PanTompkins {
	return &PanTompkins{
		IntegrationWindow: 120 * time.Millisecond,
		Refractory:        300 * time.Millisecond,
		SearchWindow:      75 * time.Millisecond,
		HeightFactor:      2.0,
	}
}

// Method implements contracts.PeakDetector
func (d *PanTompkins) Method() string {
	return MethodPanTompkins
}

// Detect implements contracts.PeakDetector
func (d *PanTompkins) Detect(ctx context.Context, cleaned []float64, samplingRateHz int) ([]int, error) {
	if samplingRateHz < 1 || len(cleaned) < 3 {
		return nil, fmt.Errorf("%w: %d samples at %d Hz", contracts.ErrPeakDetection, len(cleaned), samplingRateHz)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	energy := Energy(cleaned, windowSamples(d.IntegrationWindow, samplingRateHz))

	var mean float64
	for _, v := range energy {
		mean += v
	}
	mean /= float64(len(energy))
	if mean <= 0 || math.IsNaN(mean) {
		return nil, fmt.Errorf("%w: flat signal", contracts.ErrPeakDetection)
	}

	candidates := FindPeaks(energy, d.HeightFactor*mean, windowSamples(d.Refractory, samplingRateHz))

	search := windowSamples(d.SearchWindow, samplingRateHz)
	snapped := make([]int, 0, len(candidates))
	for _, c := range candidates {
		snapped = append(snapped, argmaxAbs(cleaned, c-search, c+search))
	}

	return enforceDistance(cleaned, snapped, windowSamples(d.Refractory, samplingRateHz)), nil
}

// Energy is the moving-window integral of the squared first difference.
// Index i holds the energy around (x[i+1]-x[i]); the output has len(x) values.
func Energy(x []float64, w int) []float64 {
	sq := make([]float64, len(x))
	for i := 0; i+1 < len(x); i++ {
		d := x[i+1] - x[i]
		sq[i] = d * d
	}
	return MovingAverage(sq, w)
}

// FindPeaks returns local maxima above height, keeping the tallest
// when two are closer than distance samples. Result is sorted.
func FindPeaks(x []float64, height float64, distance int) []int {
	var local []int
	for i := 1; i+1 < len(x); i++ {
		if x[i] < height {
			continue
		}
		if x[i] > x[i-1] && x[i] >= x[i+1] {
			local = append(local, i)
		}
	}
	if distance <= 1 || len(local) < 2 {
		return local
	}

	byHeight := make([]int, len(local))
	copy(byHeight, local)
	sort.SliceStable(byHeight, func(a, b int) bool { return x[byHeight[a]] > x[byHeight[b]] })

	kept := make([]int, 0, len(local))
	for _, idx := range byHeight {
		tooClose := false
		for _, k := range kept {
			if abs(idx-k) < distance {
				tooClose = true
				break
			}
		}
		if !tooClose {
			kept = append(kept, idx)
		}
	}

	sort.Ints(kept)
	return kept
}

// enforceDistance keeps indices strictly increasing and at least distance apart
func enforceDistance(x []float64, idx []int, distance int) []int {
	sort.Ints(idx)
	out := make([]int, 0, len(idx))
	for _, i := range idx {
		if len(out) == 0 {
			out = append(out, i)
			continue
		}
		last := out[len(out)-1]
		if i-last >= distance {
			out = append(out, i)
			continue
		}
		if math.Abs(x[i]) > math.Abs(x[last]) {
			out[len(out)-1] = i
		}
	}
	return out
}

func argmaxAbs(x []float64, lo, hi int) int {
	if lo < 0 {
		lo = 0
	}
	if hi >= len(x) {
		hi = len(x) - 1
	}
	best := lo
	for i := lo + 1; i <= hi; i++ {
		if math.Abs(x[i]) > math.Abs(x[best]) {
			best = i
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

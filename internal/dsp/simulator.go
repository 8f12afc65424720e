package dsp

import (
	"math"
	"math/rand"
)

// Simulator generates a non-clinical ECG-like waveform: baseline drift plus
// Gaussian P, Q, R, S and T waves, with optional heart-rate modulation and noise.
type Simulator struct {
	fs          float64
	hrBPM       float64
	variability float64 // bpm amplitude of the 0.1 Hz modulation
	noise       float64
	phase       float64
	t           float64
	rng         *rand.Rand
}

// NewSimulator creates a generator at fs Hz; seed makes the noise reproducible
func NewSimulator(fs, hrBPM, variability, noise float64, seed int64) *Simulator {
	return &Simulator{
		fs:          fs,
		hrBPM:       hrBPM,
		variability: variability,
		noise:       noise,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// Next returns the next sample and advances time
func (s *Simulator) Next() float64 {
	hr := s.hrBPM + s.variability*math.Sin(2*math.Pi*0.1*s.t)
	s.t += 1 / s.fs

	s.phase += hr / 60.0 / s.fs
	if s.phase >= 1.0 {
		s.phase -= 1.0
	}
	p := s.phase

	baseline := 0.05 * math.Sin(2*math.Pi*0.33*s.t)

	wave := 0.08*gauss(p, 0.18, 0.03) -
		0.12*gauss(p, 0.30, 0.01) +
		1.00*gauss(p, 0.32, 0.008) -
		0.25*gauss(p, 0.35, 0.012) +
		0.25*gauss(p, 0.60, 0.06)

	var n float64
	if s.noise > 0 {
		n = s.noise * s.rng.NormFloat64()
	}
	return baseline + wave + n
}

// Samples returns the next n samples
func (s *Simulator) Samples(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = s.Next()
	}
	return out
}

func gauss(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}

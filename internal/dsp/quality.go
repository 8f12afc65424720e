package dsp

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ecg-pomodoro/backend/internal/contracts"
)

// TemplateQuality scores each beat by its correlation with the average beat.
// Samples between two beats take the score of the beat on their left;
// samples before the first beat take the first beat's score.
type TemplateQuality struct {
	detector contracts.PeakDetector
	Before   time.Duration
	After    time.Duration
}

// NewTemplateQuality returns a scorer with a 200 ms / 400 ms beat window
func NewTemplateQuality(detector contracts.PeakDetector) *TemplateQuality {
	return &TemplateQuality{
		detector: detector,
		Before:   200 * time.Millisecond,
		After:    400 * time.Millisecond,
	}
}

// Score implements contracts.QualityScorer
func (q *TemplateQuality) Score(ctx context.Context, cleaned []float64, samplingRateHz int) ([]float64, error) {
	peaks, err := q.detector.Detect(ctx, cleaned, samplingRateHz)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrQualityComputation, err)
	}

	before := windowSamples(q.Before, samplingRateHz)
	after := windowSamples(q.After, samplingRateHz)
	width := before + after

	// 전체 윈도우가 신호 안에 있는 박동만 템플릿에 사용
	var beats [][]float64
	var anchors []int
	for _, p := range peaks {
		lo, hi := p-before, p+after
		if lo < 0 || hi > len(cleaned) {
			continue
		}
		beats = append(beats, cleaned[lo:hi])
		anchors = append(anchors, p)
	}
	if len(beats) < 2 {
		return nil, fmt.Errorf("%w: %d complete beats", contracts.ErrQualityComputation, len(beats))
	}

	template := make([]float64, width)
	for _, b := range beats {
		for i, v := range b {
			template[i] += v
		}
	}
	for i := range template {
		template[i] /= float64(len(beats))
	}

	beatScores := make([]float64, len(beats))
	for i, b := range beats {
		r := pearson(b, template)
		switch {
		case math.IsNaN(r) || r < 0:
			r = 0
		case r > 1:
			r = 1
		}
		beatScores[i] = r
	}

	scores := make([]float64, len(cleaned))
	k := 0
	for i := range scores {
		for k+1 < len(anchors) && i >= anchors[k+1] {
			k++
		}
		scores[i] = beatScores[k]
	}
	return scores, nil
}

func pearson(a, b []float64) float64 {
	n := float64(len(a))
	var ma, mb float64
	for i := range a {
		ma += a[i]
		mb += b[i]
	}
	ma /= n
	mb /= n

	var cov, va, vb float64
	for i := range a {
		da, db := a[i]-ma, b[i]-mb
		cov += da * db
		va += da * da
		vb += db * db
	}
	if va == 0 || vb == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(va*vb)
}

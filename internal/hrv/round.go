package hrv

import (
	"math"

	"github.com/ecg-pomodoro/backend/internal/contracts"
)

// Round rounds half away from zero to the given number of decimals
func Round(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// RoundMetrics rounds HRV values for output (2 decimals)
func RoundMetrics(m contracts.HRVMetrics) contracts.HRVMetrics {
	return contracts.HRVMetrics{
		MeanHRBpm: Round(m.MeanHRBpm, 2),
		RMSSDMs:   Round(m.RMSSDMs, 2),
		SDNNMs:    Round(m.SDNNMs, 2),
	}
}

// RoundSummary rounds an RR summary for output (outlier ratio keeps 3 decimals)
func RoundSummary(s contracts.RRSummary) contracts.RRSummary {
	return contracts.RRSummary{
		N:            s.N,
		MeanMs:       Round(s.MeanMs, 2),
		StdMs:        Round(s.StdMs, 2),
		MinMs:        Round(s.MinMs, 2),
		MaxMs:        Round(s.MaxMs, 2),
		OutlierRatio: Round(s.OutlierRatio, 3),
	}
}

// RoundHeartRate rounds an HR summary for output (2 decimals)
func RoundHeartRate(s contracts.HRSummary) contracts.HRSummary {
	return contracts.HRSummary{
		MeanBpm: Round(s.MeanBpm, 2),
		MinBpm:  Round(s.MinBpm, 2),
		MaxBpm:  Round(s.MaxBpm, 2),
	}
}

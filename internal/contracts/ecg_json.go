package contracts

import (
	"encoding/json"
	"math"
)

// Missing samples travel as JSON null and live in memory as NaN.

type rawSegmentAlias RawSegment

type rawSegmentWire struct {
	rawSegmentAlias
	Samples [][]*float64 `json:"samples"`
}

// UnmarshalJSON decodes null samples as NaN
func (s *RawSegment) UnmarshalJSON(data []byte) error {
	var w rawSegmentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*s = RawSegment(w.rawSegmentAlias)
	if w.Samples == nil {
		s.Samples = nil
		return nil
	}

	s.Samples = make([][]float64, len(w.Samples))
	for i, row := range w.Samples {
		if row == nil {
			continue
		}
		out := make([]float64, len(row))
		for j, v := range row {
			if v == nil {
				out[j] = math.NaN()
				continue
			}
			out[j] = *v
		}
		s.Samples[i] = out
	}
	return nil
}

// MarshalJSON encodes NaN and ±Inf samples as null
func (s RawSegment) MarshalJSON() ([]byte, error) {
	w := rawSegmentWire{rawSegmentAlias: rawSegmentAlias(s)}
	w.rawSegmentAlias.Samples = nil
	if s.Samples != nil {
		w.Samples = make([][]*float64, len(s.Samples))
		for i, row := range s.Samples {
			if row == nil {
				continue
			}
			out := make([]*float64, len(row))
			for j := range row {
				v := row[j]
				if math.IsNaN(v) || math.IsInf(v, 0) {
					continue
				}
				out[j] = &v
			}
			w.Samples[i] = out
		}
	}
	return json.Marshal(w)
}

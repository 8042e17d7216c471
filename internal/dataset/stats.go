package dataset

import "math"

// ColumnStats summarizes one retained column.
type ColumnStats struct {
	Name    string  `json:"name"`
	NonNull int     `json:"non_null"`
	Missing int     `json:"missing"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
}

// Summarize computes per-column statistics in table order.
func Summarize(t *Table) []ColumnStats {
	out := make([]ColumnStats, 0, len(t.Columns))
	for _, c := range t.Columns {
		s := ColumnStats{Name: c.Name, Min: math.Inf(1), Max: math.Inf(-1)}
		// Welford update
		var mean, m2 float64
		for _, x := range c.Values {
			if IsMissing(x) {
				s.Missing++
				continue
			}
			s.NonNull++
			if x < s.Min {
				s.Min = x
			}
			if x > s.Max {
				s.Max = x
			}
			delta := x - mean
			mean += delta / float64(s.NonNull)
			m2 += delta * (x - mean)
		}
		s.Mean = mean
		if s.NonNull > 1 {
			s.Std = math.Sqrt(m2 / float64(s.NonNull-1))
		}
		if s.NonNull == 0 {
			s.Min, s.Max = 0, 0
		}
		out = append(out, s)
	}
	return out
}

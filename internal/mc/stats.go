package mc

import (
	"math"
	"sort"
)

// Stats summarizes one outcome scalar over the successful trials.
type Stats struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Max   float64
	P5    float64
	P50   float64
	P95   float64
}

// Summarize computes distribution statistics for values. Zero values yield
// a zero Stats.
func Summarize(values []float64) Stats {
	n := len(values)
	if n == 0 {
		return Stats{}
	}

	s := Stats{Count: n, Min: values[0], Max: values[0]}
	for _, v := range values {
		s.Mean += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean /= float64(n)

	for _, v := range values {
		s.Std += (v - s.Mean) * (v - s.Mean)
	}
	if n > 1 {
		s.Std = math.Sqrt(s.Std / float64(n-1))
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	s.P5 = Quantile(sorted, 0.05)
	s.P50 = Quantile(sorted, 0.50)
	s.P95 = Quantile(sorted, 0.95)
	return s
}

// Quantile reads quantile q from an ascending-sorted slice with linear
// interpolation between neighbors.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

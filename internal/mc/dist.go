package mc

import (
	"math/rand"

	"github.com/n-veld/apogee/internal/config"
)

// Rejection budget for truncated-normal draws. Bounds further than a few
// sigma from the mean exhaust it, which is a configuration problem, not a
// sampling problem.
const maxRejects = 1000

// Sample draws one value from the variation's distribution using the
// caller-supplied source. Truncated normals are re-drawn, never clamped;
// clamping would bias the variance estimates the analyzer depends on.
func Sample(v config.Variation, rng *rand.Rand) (float64, error) {
	if err := v.Validate("variation"); err != nil {
		return 0, err
	}
	switch v.Dist {
	case config.DistNormal:
		return v.Mean + v.Std*rng.NormFloat64(), nil
	case config.DistUniform:
		return v.Min + (v.Max-v.Min)*rng.Float64(), nil
	case config.DistTruncatedNormal:
		if v.Std == 0 {
			return v.Mean, nil
		}
		for i := 0; i < maxRejects; i++ {
			x := v.Mean + v.Std*rng.NormFloat64()
			if x >= v.Min && x <= v.Max {
				return x, nil
			}
		}
		return 0, &config.ConfigurationError{
			Field:  "variation",
			Reason: "truncated normal rejected all draws; bounds too far from mean",
		}
	}
	// Unreachable after Validate.
	return 0, &config.ConfigurationError{Field: "variation", Reason: "unknown distribution kind"}
}

// SampleN draws n values from the variation.
func SampleN(v config.Variation, n int, rng *rand.Rand) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		x, err := Sample(v, rng)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

package mc

import (
	"math/rand"
	"sort"

	"github.com/n-veld/apogee/internal/config"
)

// Plan is a Saltelli pick-freeze sample design over the declared parameter
// variations: two independent N x d matrices A and B, plus the d radial
// matrices ABi (A with column i taken from B). Total trials are N*(d+2);
// with no variations the plan degenerates to N repeats of the base config.
//
// Row j of both matrices is drawn from a rand source seeded with seed+j, so
// the design is a pure function of (variations, N, seed) and independent of
// execution order.
type Plan struct {
	Names []string
	N     int
	Seed  int64

	a, b [][]float64
}

// NewPlan validates every variation (distribution spec and path
// resolvability) and draws the design. Parameter order is the sorted path
// list.
func NewPlan(vars map[string]config.Variation, n int, seed int64) (*Plan, error) {
	if n < 1 {
		return nil, &config.ConfigurationError{Field: "trials", Reason: "must be at least 1"}
	}
	names := make([]string, 0, len(vars))
	for path := range vars {
		names = append(names, path)
	}
	sort.Strings(names)

	for _, path := range names {
		if err := vars[path].Validate(path); err != nil {
			return nil, err
		}
		if !config.Settable(path) {
			return nil, &config.ConfigurationError{Field: path, Reason: "does not resolve to a settable parameter"}
		}
	}

	p := &Plan{Names: names, N: n, Seed: seed}
	d := len(names)
	p.a = make([][]float64, n)
	p.b = make([][]float64, n)
	for j := 0; j < n; j++ {
		rng := rand.New(rand.NewSource(seed + int64(j)))
		p.a[j] = make([]float64, d)
		p.b[j] = make([]float64, d)
		for i, path := range names {
			x, err := Sample(vars[path], rng)
			if err != nil {
				return nil, err
			}
			p.a[j][i] = x
		}
		for i, path := range names {
			x, err := Sample(vars[path], rng)
			if err != nil {
				return nil, err
			}
			p.b[j][i] = x
		}
	}
	return p, nil
}

// D is the number of varied parameters.
func (p *Plan) D() int { return len(p.Names) }

// Trials is the total number of trials the plan requires.
func (p *Plan) Trials() int {
	if p.D() == 0 {
		return p.N
	}
	return p.N * (p.D() + 2)
}

// Row maps a trial index onto its design block and base-sample row.
// Block 0 is A, block 1 is B, block 2+i is ABi.
func (p *Plan) Row(trial int) (block, row int) {
	return trial / p.N, trial % p.N
}

// Vector returns the parameter vector for a trial, in Names order.
func (p *Plan) Vector(trial int) []float64 {
	if p.D() == 0 {
		return nil
	}
	block, row := p.Row(trial)
	switch block {
	case 0:
		return p.a[row]
	case 1:
		return p.b[row]
	default:
		i := block - 2
		v := make([]float64, p.D())
		copy(v, p.a[row])
		v[i] = p.b[row][i]
		return v
	}
}

// Assignments returns the trial's parameter overrides keyed by path.
func (p *Plan) Assignments(trial int) map[string]float64 {
	vec := p.Vector(trial)
	if vec == nil {
		return nil
	}
	out := make(map[string]float64, len(vec))
	for i, path := range p.Names {
		out[path] = vec[i]
	}
	return out
}

// NoiseSeed keys the engine's sensor-noise stream. It depends on the base
// row, not the trial index, so the nuisance noise is frozen across design
// blocks: two trials that share a row differ only in their swapped
// parameter columns.
func (p *Plan) NoiseSeed(trial int) int64 {
	_, row := p.Row(trial)
	return p.Seed + 7919*int64(row+1)
}

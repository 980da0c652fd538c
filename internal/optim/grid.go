// Package optim tunes controller gains by exhaustive grid search.
package optim

import (
	"context"
	"math"
)

// GridSearch evaluates every combination of the candidate values and keeps
// the parameter set with the lowest objective. Evaluation errors skip the
// point rather than aborting the search.
type GridSearch struct {
	names  []string
	values [][]float64
}

func New(names []string, values [][]float64) *GridSearch {
	return &GridSearch{names: names, values: values}
}

// Search minimizes eval over the grid. It returns the best parameter set
// and its objective value; ok is false when every point failed.
func (g *GridSearch) Search(ctx context.Context, eval func(map[string]float64) (float64, error)) (map[string]float64, float64, bool) {
	best := math.Inf(1)
	var bestParams map[string]float64

	g.walk(ctx, 0, make(map[string]float64), eval, &best, &bestParams)
	return bestParams, best, bestParams != nil
}

func (g *GridSearch) walk(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval func(map[string]float64) (float64, error),
	best *float64,
	bestParams *map[string]float64,
) {
	if ctx.Err() != nil {
		return
	}
	if depth == len(g.names) {
		val, err := eval(current)
		if err != nil {
			return
		}
		if val < *best {
			*best = val
			picked := make(map[string]float64, len(current))
			for k, v := range current {
				picked[k] = v
			}
			*bestParams = picked
		}
		return
	}

	name := g.names[depth]
	for _, v := range g.values[depth] {
		current[name] = v
		g.walk(ctx, depth+1, current, eval, best, bestParams)
	}
	delete(current, name)
}

// Scaled builds a candidate list by multiplying a base value by each factor.
func Scaled(base float64, factors ...float64) []float64 {
	out := make([]float64, len(factors))
	for i, f := range factors {
		out[i] = base * f
	}
	return out
}

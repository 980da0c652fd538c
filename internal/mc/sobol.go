package mc

import (
	"fmt"
	"math/rand"
	"sort"
)

// InsufficientDataError is returned when too few trials succeeded for the
// sensitivity estimates to be statistically meaningful.
type InsufficientDataError struct {
	Needed int
	Got    int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("mc: insufficient data: %d usable sample rows, need %d", e.Got, e.Needed)
}

// Index is the sensitivity result for one parameter: first-order and
// total-order Sobol indices with bootstrap confidence bounds.
type Index struct {
	Name  string
	First float64
	Total float64

	FirstLow, FirstHigh float64
	TotalLow, TotalHigh float64
}

// Analysis is the ranked sensitivity table for one outcome scalar.
type Analysis struct {
	Outcome string
	Rows    int // usable base-sample rows
	Indices []Index
}

// Analyzer computes variance-based sensitivity indices from a completed
// batch. First-order uses the Saltelli (2010) estimator, total-order the
// Jansen estimator; both are evaluated over the plan rows whose A, B and
// every ABi trial all succeeded.
type Analyzer struct {
	MinRows   int
	Bootstrap int
	Seed      int64
}

// Analyze ranks the parameters by total-order index for the named outcome.
func (a *Analyzer) Analyze(plan *Plan, batch *Batch, outcome string) (*Analysis, error) {
	d := plan.D()
	if d == 0 {
		return nil, fmt.Errorf("mc: no varied parameters to analyze")
	}
	if _, ok := OutcomeValue(Outcomes{}, outcome); !ok {
		return nil, fmt.Errorf("mc: unknown outcome %q", outcome)
	}

	value := func(trial int) (float64, bool) {
		r := batch.Records[trial]
		if !r.OK {
			return 0, false
		}
		v, _ := OutcomeValue(r.Outcomes, outcome)
		return v, true
	}

	// A failed trial anywhere in a row poisons the whole pick-freeze row.
	var yA, yB []float64
	yAB := make([][]float64, d)
	for j := 0; j < plan.N; j++ {
		va, okA := value(j)
		vb, okB := value(plan.N + j)
		if !okA || !okB {
			continue
		}
		rowAB := make([]float64, d)
		usable := true
		for i := 0; i < d; i++ {
			v, ok := value((2+i)*plan.N + j)
			if !ok {
				usable = false
				break
			}
			rowAB[i] = v
		}
		if !usable {
			continue
		}
		yA = append(yA, va)
		yB = append(yB, vb)
		for i := 0; i < d; i++ {
			yAB[i] = append(yAB[i], rowAB[i])
		}
	}

	rows := len(yA)
	minRows := a.MinRows
	if minRows < 2 {
		minRows = 2
	}
	if rows < minRows {
		return nil, &InsufficientDataError{Needed: minRows, Got: rows}
	}

	first, total := sobolEstimate(yA, yB, yAB)

	analysis := &Analysis{Outcome: outcome, Rows: rows}
	lows, highs := a.bootstrapBounds(yA, yB, yAB)
	for i, name := range plan.Names {
		analysis.Indices = append(analysis.Indices, Index{
			Name:      name,
			First:     first[i],
			Total:     total[i],
			FirstLow:  lows[0][i],
			FirstHigh: highs[0][i],
			TotalLow:  lows[1][i],
			TotalHigh: highs[1][i],
		})
	}
	sort.SliceStable(analysis.Indices, func(i, j int) bool {
		return analysis.Indices[i].Total > analysis.Indices[j].Total
	})
	return analysis, nil
}

// sobolEstimate computes first- and total-order indices over aligned sample
// rows. A parameter whose ABi outcomes equal the A outcomes (zero declared
// variation) gets exactly zero for both.
func sobolEstimate(yA, yB []float64, yAB [][]float64) (first, total []float64) {
	n := len(yA)
	d := len(yAB)
	first = make([]float64, d)
	total = make([]float64, d)

	mean := 0.0
	for j := 0; j < n; j++ {
		mean += yA[j] + yB[j]
	}
	mean /= float64(2 * n)

	variance := 0.0
	for j := 0; j < n; j++ {
		variance += (yA[j]-mean)*(yA[j]-mean) + (yB[j]-mean)*(yB[j]-mean)
	}
	variance /= float64(2*n - 1)
	if variance == 0 {
		return first, total
	}

	for i := 0; i < d; i++ {
		var si, sti float64
		for j := 0; j < n; j++ {
			si += yB[j] * (yAB[i][j] - yA[j])
			diff := yA[j] - yAB[i][j]
			sti += diff * diff
		}
		first[i] = si / (float64(n) * variance)
		total[i] = sti / (2 * float64(n) * variance)
	}
	return first, total
}

// bootstrapBounds derives 95% percentile intervals by resampling rows.
// Returned as lows[kind][param], highs[kind][param] with kind 0 = first,
// kind 1 = total.
func (a *Analyzer) bootstrapBounds(yA, yB []float64, yAB [][]float64) (lows, highs [2][]float64) {
	n := len(yA)
	d := len(yAB)
	b := a.Bootstrap
	for k := 0; k < 2; k++ {
		lows[k] = make([]float64, d)
		highs[k] = make([]float64, d)
	}
	if b < 2 {
		// No resampling requested; collapse the interval onto the point.
		first, total := sobolEstimate(yA, yB, yAB)
		copy(lows[0], first)
		copy(highs[0], first)
		copy(lows[1], total)
		copy(highs[1], total)
		return lows, highs
	}

	rng := rand.New(rand.NewSource(a.Seed))
	firsts := make([][]float64, d)
	totals := make([][]float64, d)
	for i := range firsts {
		firsts[i] = make([]float64, 0, b)
		totals[i] = make([]float64, 0, b)
	}

	rA := make([]float64, n)
	rB := make([]float64, n)
	rAB := make([][]float64, d)
	for i := range rAB {
		rAB[i] = make([]float64, n)
	}

	for rep := 0; rep < b; rep++ {
		for j := 0; j < n; j++ {
			pick := rng.Intn(n)
			rA[j] = yA[pick]
			rB[j] = yB[pick]
			for i := 0; i < d; i++ {
				rAB[i][j] = yAB[i][pick]
			}
		}
		first, total := sobolEstimate(rA, rB, rAB)
		for i := 0; i < d; i++ {
			firsts[i] = append(firsts[i], first[i])
			totals[i] = append(totals[i], total[i])
		}
	}

	for i := 0; i < d; i++ {
		sort.Float64s(firsts[i])
		sort.Float64s(totals[i])
		lows[0][i] = Quantile(firsts[i], 0.025)
		highs[0][i] = Quantile(firsts[i], 0.975)
		lows[1][i] = Quantile(totals[i], 0.025)
		highs[1][i] = Quantile(totals[i], 0.975)
	}
	return lows, highs
}

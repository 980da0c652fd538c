package control

import "math"

// CoastModel is the simplified ballistic-with-drag model of the remaining
// ascent used by the predictive strategies. The drag parameter is
// k = rho*Cd*A/(2m) [1/m]; deployment adds BrakeK linearly on top of BaseK.
type CoastModel struct {
	Gravity float64
	BaseK   float64
	BrakeK  float64
}

func (m CoastModel) k(deployment float64) float64 {
	return m.BaseK + deployment*m.BrakeK
}

// Apogee integrates `steps` coast ticks of length dt at a held deployment,
// then closes the remaining ascent with the drag-aware ballistic formula.
func (m CoastModel) Apogee(altitude, velocity, deployment, dt float64, steps int) float64 {
	h, v := altitude, velocity
	k := m.k(deployment)
	for i := 0; i < steps && v > 0; i++ {
		v -= (m.Gravity + k*v*v) * dt
		h += v * dt
	}
	if v <= 0 {
		return h
	}
	return BallisticDrag(m.Gravity, k)(h, v)
}

// MPC re-solves, every tick, for the constant deployment over the prediction
// horizon that puts the modeled apogee on target. The apogee is monotone
// decreasing in deployment, so the search is a bounded bisection.
type MPC struct {
	model   CoastModel
	target  float64
	horizon int
	tol     float64
	maxIter int
}

func NewMPC(cfg Config, model CoastModel) *MPC {
	tol := cfg.Tolerance
	if tol <= 0 {
		tol = 1.0
	}
	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = 24
	}
	return &MPC{
		model:   model,
		target:  cfg.effectiveTarget(),
		horizon: cfg.Horizon,
		tol:     tol,
		maxIter: maxIter,
	}
}

func (m *MPC) Decide(st *State, dt float64) (float64, error) {
	h, v := st.FilteredAltitude, st.FilteredVelocity

	miss := func(u float64) float64 {
		return m.model.Apogee(h, v, u, dt, m.horizon) - m.target
	}

	// Saturated cases need no search.
	if miss(0) <= m.tol {
		st.PreviousError = miss(0)
		return 0.0, nil
	}
	if miss(1) >= -m.tol {
		st.PreviousError = miss(1)
		return 1.0, nil
	}

	lo, hi := 0.0, 1.0
	for i := 0; i < m.maxIter; i++ {
		mid := (lo + hi) / 2
		d := miss(mid)
		if math.Abs(d) <= m.tol {
			st.PreviousError = d
			return mid, nil
		}
		if d > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0, ErrNoConvergence
}

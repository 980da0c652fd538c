package control

import (
	"errors"

	"go.uber.org/zap"
)

// Loop is the per-tick air-brakes decision function: filter stage, strategy,
// actuator-limit enforcement. One Loop serves exactly one flight; construct
// a fresh one (or call Reset) before reuse.
type Loop struct {
	cfg      Config
	strategy Strategy
	state    State
	log      *zap.Logger
}

// NewStrategy builds the strategy for cfg.Kind. The predictor feeds the PID
// and bang-bang error terms; the coast model feeds the MPC horizon search.
func NewStrategy(cfg Config, predict Predictor, model CoastModel) (Strategy, error) {
	switch cfg.Kind {
	case KindPID:
		return NewPID(cfg, predict), nil
	case KindBangBang:
		return NewBangBang(cfg, predict), nil
	case KindMPC:
		return NewMPC(cfg, model), nil
	default:
		return nil, ErrUnknownKind
	}
}

// NewLoop validates cfg and builds a loop around a fresh State. A nil
// predictor falls back to the drag-aware ballistic estimate derived from the
// coast model; a nil logger is replaced with a no-op.
func NewLoop(cfg Config, predict Predictor, model CoastModel, log *zap.Logger) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if predict == nil {
		predict = BallisticDrag(model.Gravity, model.BaseK)
	}
	if log == nil {
		log = zap.NewNop()
	}
	strategy, err := NewStrategy(cfg, predict, model)
	if err != nil {
		return nil, err
	}
	return &Loop{cfg: cfg, strategy: strategy, log: log}, nil
}

// Tick runs one control cycle on raw sensor estimates and returns the
// rate-limited deployment command in [0, MaxDeployment].
//
// An MPC tick that fails to converge degrades to the previous command and is
// logged; it never aborts the flight.
func (l *Loop) Tick(rawAltitude, rawVelocity, dt float64) (float64, error) {
	if dt <= 0 {
		return l.state.CommandedDeployment, ErrNonPositiveInterval
	}

	st := &l.state
	if !st.Initialized {
		// First observation passes through unfiltered.
		st.FilteredAltitude = rawAltitude
		st.FilteredVelocity = rawVelocity
		st.Initialized = true
	} else {
		st.FilteredAltitude = Lowpass(st.FilteredAltitude, rawAltitude, l.cfg.AltitudeAlpha)
		st.FilteredVelocity = Lowpass(st.FilteredVelocity, rawVelocity, l.cfg.VelocityAlpha)
	}

	raw, err := l.strategy.Decide(st, dt)
	if err != nil {
		if !errors.Is(err, ErrNoConvergence) {
			return st.CommandedDeployment, err
		}
		l.log.Warn("degraded control tick, holding previous command",
			zap.Float64("altitude", st.FilteredAltitude),
			zap.Float64("velocity", st.FilteredVelocity),
			zap.Error(err))
		raw = st.CommandedDeployment
	}

	cmd := clamp(raw, 0, l.cfg.MaxDeployment)
	step := l.cfg.RateLimit * dt
	st.CommandedDeployment += clamp(cmd-st.CommandedDeployment, -step, step)
	return st.CommandedDeployment, nil
}

// Reset zeroes all controller state. Required before reusing the loop for
// another flight; callable any number of times.
func (l *Loop) Reset() {
	l.state.Reset()
}

// State returns a copy of the current controller state for inspection.
func (l *Loop) State() State {
	return l.state
}

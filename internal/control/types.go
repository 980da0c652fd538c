package control

// Kind selects a controller strategy. The set is closed: adding a strategy
// means adding a case to NewStrategy, the loop itself never changes.
type Kind string

const (
	KindPID      Kind = "pid"
	KindBangBang Kind = "bangbang"
	KindMPC      Kind = "mpc"
)

// State is the full mutable state of one controller instance. It is owned
// exclusively by one Loop and never shared across flights.
type State struct {
	IntegralError       float64
	PreviousError       float64
	CommandedDeployment float64
	FilteredAltitude    float64
	FilteredVelocity    float64
	Initialized         bool
}

// Reset returns the state to its freshly-constructed zero value. The next
// tick re-seeds the filters from the raw readings.
func (s *State) Reset() {
	*s = State{}
}

// Strategy computes a raw deployment command from the filtered estimates in
// st, mutating the strategy-owned error terms in st as a side effect. The
// returned command is unclamped; the loop applies actuator limits.
type Strategy interface {
	Decide(st *State, dt float64) (float64, error)
}

// Config is the immutable controller configuration, shared read-only across
// trials.
type Config struct {
	Kind         Kind    `yaml:"kind"`
	TargetApogee float64 `yaml:"target_apogee"`

	SampleRate    float64 `yaml:"sample_rate"`    // control ticks per second
	MaxDeployment float64 `yaml:"max_deployment"` // command clamp, in [0,1]
	RateLimit     float64 `yaml:"rate_limit"`     // deployment fraction per second

	AltitudeAlpha float64 `yaml:"altitude_alpha"`
	VelocityAlpha float64 `yaml:"velocity_alpha"`

	// OvershootBias scales the target inside the error term so the
	// controller aims slightly high; brakes can only remove energy.
	OvershootBias float64 `yaml:"overshoot_bias"`

	Kp            float64 `yaml:"kp"`
	Ki            float64 `yaml:"ki"`
	Kd            float64 `yaml:"kd"`
	IntegralLimit float64 `yaml:"integral_limit"` // anti-windup clamp, 0 disables

	Hysteresis float64 `yaml:"hysteresis"` // bang-bang band, meters

	Horizon       int     `yaml:"horizon"`        // mpc prediction horizon, ticks
	Tolerance     float64 `yaml:"tolerance"`      // mpc apogee tolerance, meters
	MaxIterations int     `yaml:"max_iterations"` // mpc search budget
}

// Validate checks the configuration fields the loop depends on.
func (c Config) Validate() error {
	switch c.Kind {
	case KindPID, KindBangBang, KindMPC:
	default:
		return ErrUnknownKind
	}
	if c.TargetApogee <= 0 {
		return ErrTargetApogee
	}
	if c.SampleRate <= 0 {
		return ErrNonPositiveInterval
	}
	if c.MaxDeployment < 0 || c.MaxDeployment > 1 {
		return ErrDeploymentBounds
	}
	if c.RateLimit <= 0 {
		return ErrRateLimit
	}
	if c.AltitudeAlpha <= 0 || c.AltitudeAlpha > 1 {
		return ErrFilterAlpha
	}
	if c.VelocityAlpha <= 0 || c.VelocityAlpha > 1 {
		return ErrFilterAlpha
	}
	if c.Kind == KindMPC && c.Horizon < 1 {
		return ErrHorizon
	}
	return nil
}

// effectiveTarget is the apogee the strategies actually steer toward.
func (c Config) effectiveTarget() float64 {
	bias := c.OvershootBias
	if bias <= 0 {
		bias = 1.0
	}
	return c.TargetApogee * bias
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

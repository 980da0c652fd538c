package control

import "errors"

// Control-setup errors. All of these surface at Loop construction or on the
// first bad tick, before any trial statistics are touched.
var (
	// ErrNonPositiveInterval indicates a control tick with dt <= 0.
	ErrNonPositiveInterval = errors.New("control: tick interval must be positive")

	// ErrDeploymentBounds indicates max deployment outside [0, 1].
	ErrDeploymentBounds = errors.New("control: max deployment must be in [0, 1]")

	// ErrFilterAlpha indicates a filter coefficient outside (0, 1].
	ErrFilterAlpha = errors.New("control: filter alpha must be in (0, 1]")

	// ErrRateLimit indicates a non-positive deployment rate limit.
	ErrRateLimit = errors.New("control: rate limit must be positive")

	// ErrTargetApogee indicates a non-positive target apogee.
	ErrTargetApogee = errors.New("control: target apogee must be positive")

	// ErrUnknownKind indicates a controller kind outside the closed set.
	ErrUnknownKind = errors.New("control: unknown controller kind")

	// ErrHorizon indicates a non-positive MPC prediction horizon.
	ErrHorizon = errors.New("control: mpc horizon must be at least one tick")

	// ErrNoConvergence indicates the MPC horizon search exhausted its
	// iteration budget. The loop recovers by holding the previous command.
	ErrNoConvergence = errors.New("control: mpc horizon search did not converge")
)

// Package flight defines the boundary to the flight-dynamics engine and a
// point-mass reference engine.
//
// The engine drives the controller, not the other way around: once per
// control period it calls the supplied TickFunc with its current altitude
// and vertical-velocity estimates, and applies the returned deployment as a
// drag modifier for the following integration steps.
package flight

import (
	"context"
	"errors"
	"math"
)

// TickFunc is the control callback invoked once per control period. dt is
// the elapsed interval since the previous tick. The returned deployment is
// a fractional brake extension in [0, 1].
type TickFunc func(altitude, velocity, dt float64) float64

// Engine runs one flight to completion, invoking tick synchronously inside
// its integration loop.
type Engine interface {
	Fly(ctx context.Context, tick TickFunc) (*Summary, error)
}

// Point is one sampled trajectory state.
type Point struct {
	T          float64
	Altitude   float64
	Velocity   float64
	Deployment float64
}

// Summary is the scalar outcome vector of one flight plus a decimated
// trajectory for plotting.
type Summary struct {
	Apogee          float64
	MaxVelocity     float64
	MaxAcceleration float64
	TimeToApogee    float64
	FlightTime      float64
	ImpactRange     float64

	Trajectory []Point
}

var (
	// ErrUnstable indicates the integration produced NaN or Inf state.
	ErrUnstable = errors.New("flight: simulation unstable (NaN/Inf state)")

	// ErrTimeout indicates the flight exceeded the configured max time
	// without reaching the ground.
	ErrTimeout = errors.New("flight: max flight time exceeded")
)

func valid(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

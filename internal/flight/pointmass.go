package flight

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

// Params configures the point-mass engine. All values are SI.
type Params struct {
	// Vehicle
	LiftoffMass float64 // kg, including propellant
	DragCoeff   float64 // base drag coefficient
	RefArea     float64 // m^2
	BrakeArea   float64 // extra Cd*A at full deployment, m^2

	// Motor, flattened to an average-thrust burn
	Thrust         float64 // N
	BurnTime       float64 // s
	PropellantMass float64 // kg

	// Environment
	Gravity         float64 // m/s^2
	SeaLevelDensity float64 // kg/m^3
	ScaleHeight     float64 // m, exponential atmosphere
	WindSpeed       float64 // m/s crosswind

	// Integration
	Dt            float64 // integration step, s
	ControlPeriod float64 // controller tick interval, s
	MaxFlightTime float64 // s

	// Sensor noise fed to the controller (0 disables). The stream is
	// seeded per flight so a flight is a deterministic function of its
	// parameters and seed.
	AltitudeNoise float64
	VelocityNoise float64
	NoiseSeed     int64
}

// PointMass is a 1-DOF vertical flight engine: constant-thrust boost with
// propellant depletion, then coast under quadratic drag in an exponential
// atmosphere. Crosswind folds into airspeed (raising drag) and carries the
// vehicle downrange.
type PointMass struct {
	p   Params
	rng *rand.Rand
}

func NewPointMass(p Params) *PointMass {
	return &PointMass{p: p, rng: rand.New(rand.NewSource(p.NoiseSeed))}
}

func (e *PointMass) validate() error {
	if e.p.Dt <= 0 {
		return fmt.Errorf("flight: integration dt must be positive, got %g", e.p.Dt)
	}
	if e.p.ControlPeriod < e.p.Dt {
		return fmt.Errorf("flight: control period %g below integration dt %g", e.p.ControlPeriod, e.p.Dt)
	}
	if e.p.LiftoffMass <= e.p.PropellantMass {
		return fmt.Errorf("flight: liftoff mass %g not above propellant mass %g", e.p.LiftoffMass, e.p.PropellantMass)
	}
	if e.p.BurnTime <= 0 {
		return fmt.Errorf("flight: burn time must be positive, got %g", e.p.BurnTime)
	}
	return nil
}

func (e *PointMass) mass(t float64) float64 {
	burned := math.Min(t, e.p.BurnTime) / e.p.BurnTime
	return e.p.LiftoffMass - e.p.PropellantMass*burned
}

func (e *PointMass) thrust(t float64) float64 {
	if t < e.p.BurnTime {
		return e.p.Thrust
	}
	return 0
}

func (e *PointMass) density(h float64) float64 {
	if h < 0 {
		h = 0
	}
	return e.p.SeaLevelDensity * math.Exp(-h/e.p.ScaleHeight)
}

// accel is dv/dt at (h, v, t) with the brakes at the given deployment.
func (e *PointMass) accel(h, v, t, deployment float64) float64 {
	m := e.mass(t)
	cda := e.p.DragCoeff*e.p.RefArea + deployment*e.p.BrakeArea
	airspeed := math.Sqrt(v*v + e.p.WindSpeed*e.p.WindSpeed)
	drag := 0.5 * e.density(h) * cda * airspeed * v
	return (e.thrust(t)-drag)/m - e.p.Gravity
}

// step advances (h, v) by dt with classic RK4.
func (e *PointMass) step(h, v, t, dt, deployment float64) (float64, float64) {
	k1h := v
	k1v := e.accel(h, v, t, deployment)

	k2h := v + 0.5*dt*k1v
	k2v := e.accel(h+0.5*dt*k1h, v+0.5*dt*k1v, t+0.5*dt, deployment)

	k3h := v + 0.5*dt*k2v
	k3v := e.accel(h+0.5*dt*k2h, v+0.5*dt*k2v, t+0.5*dt, deployment)

	k4h := v + dt*k3v
	k4v := e.accel(h+dt*k3h, v+dt*k3v, t+dt, deployment)

	h += dt / 6 * (k1h + 2*k2h + 2*k3h + k4h)
	v += dt / 6 * (k1v + 2*k2v + 2*k3v + k4v)
	return h, v
}

// Fly runs the flight until ground contact, calling tick once per control
// period. The deployment command is held between ticks.
func (e *PointMass) Fly(ctx context.Context, tick TickFunc) (*Summary, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	h, v, t := 0.0, 0.0, 0.0
	deployment := 0.0
	sinceTick := 0.0

	sum := &Summary{}
	record := func() {
		sum.Trajectory = append(sum.Trajectory, Point{T: t, Altitude: h, Velocity: v, Deployment: deployment})
	}
	record()

	steps := 0
	checkEvery := int(math.Max(1, 0.1/e.p.Dt))

	for t < e.p.MaxFlightTime {
		if steps%checkEvery == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		sinceTick += e.p.Dt
		if sinceTick >= e.p.ControlPeriod-1e-9 {
			alt := h + e.p.AltitudeNoise*e.rng.NormFloat64()
			vel := v + e.p.VelocityNoise*e.rng.NormFloat64()
			deployment = tick(alt, vel, sinceTick)
			sinceTick = 0
			record()
		}

		h, v = e.step(h, v, t, e.p.Dt, deployment)
		t += e.p.Dt
		steps++

		if !valid(h, v) {
			return nil, fmt.Errorf("%w at t=%.3f", ErrUnstable, t)
		}

		a := e.accel(h, v, t, deployment)
		if math.Abs(a) > sum.MaxAcceleration {
			sum.MaxAcceleration = math.Abs(a)
		}
		if v > sum.MaxVelocity {
			sum.MaxVelocity = v
		}
		if h > sum.Apogee {
			sum.Apogee = h
			sum.TimeToApogee = t
		}

		// Ground contact after the boost has had a chance to lift off.
		if h <= 0 && t > e.p.BurnTime {
			sum.FlightTime = t
			sum.ImpactRange = e.p.WindSpeed * t
			record()
			return sum, nil
		}
	}

	return nil, fmt.Errorf("%w (%.1fs)", ErrTimeout, e.p.MaxFlightTime)
}

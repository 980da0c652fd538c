package config

import "sort"

// setters maps dotted parameter paths to field assignments. Monte Carlo
// variations may only target paths in this registry, which keeps "every
// declared path resolves to a real, settable field" checkable before any
// trial runs.
var setters = map[string]func(*Config, float64){
	"vehicle.liftoff_mass":          func(c *Config, v float64) { c.Vehicle.LiftoffMass = v },
	"vehicle.drag_coefficient":      func(c *Config, v float64) { c.Vehicle.DragCoeff = v },
	"vehicle.reference_area":        func(c *Config, v float64) { c.Vehicle.RefArea = v },
	"vehicle.brake_area":            func(c *Config, v float64) { c.Vehicle.BrakeArea = v },
	"motor.thrust":                  func(c *Config, v float64) { c.Motor.Thrust = v },
	"motor.burn_time":               func(c *Config, v float64) { c.Motor.BurnTime = v },
	"motor.propellant_mass":         func(c *Config, v float64) { c.Motor.PropellantMass = v },
	"environment.gravity":           func(c *Config, v float64) { c.Environment.Gravity = v },
	"environment.sea_level_density": func(c *Config, v float64) { c.Environment.SeaLevelDensity = v },
	"environment.wind_speed_mps":    func(c *Config, v float64) { c.Environment.WindSpeed = v },
	"control.target_apogee":         func(c *Config, v float64) { c.Control.TargetApogee = v },
	"control.overshoot_bias":        func(c *Config, v float64) { c.Control.OvershootBias = v },
	"sim.altitude_noise":            func(c *Config, v float64) { c.Sim.AltitudeNoise = v },
	"sim.velocity_noise":            func(c *Config, v float64) { c.Sim.VelocityNoise = v },
}

// Settable reports whether path resolves to a registered field.
func Settable(path string) bool {
	_, ok := setters[path]
	return ok
}

// Apply sets the field at path on c.
func Apply(c *Config, path string, v float64) error {
	set, ok := setters[path]
	if !ok {
		return errf(path, "does not resolve to a settable parameter")
	}
	set(c, v)
	return nil
}

// Paths lists all settable parameter paths in sorted order.
func Paths() []string {
	out := make([]string, 0, len(setters))
	for p := range setters {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

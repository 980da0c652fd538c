package config

import "github.com/n-veld/apogee/internal/control"

// Presets are ready-made configurations for common setups. They start from
// DefaultConfig so only the deltas are spelled out.
var presets = map[string]func(*Config){
	// Conservative subscale airframe on a short motor, low target.
	"subscale": func(c *Config) {
		c.Vehicle.LiftoffMass = 8.0
		c.Motor.Thrust = 600.0
		c.Motor.BurnTime = 2.0
		c.Motor.PropellantMass = 1.8
		c.Control.TargetApogee = 1000.0
	},
	// Competition flight: 3 km target, bang-bang brakes.
	"competition": func(c *Config) {
		c.Control.Kind = control.KindBangBang
		c.Control.TargetApogee = 3000.0
	},
	// MPC with a tighter actuator.
	"mpc": func(c *Config) {
		c.Control.Kind = control.KindMPC
		c.Control.RateLimit = 1.0
	},
}

func GetPreset(name string) *Config {
	fn, ok := presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	fn(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}

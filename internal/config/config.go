package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/n-veld/apogee/internal/control"
	"github.com/n-veld/apogee/internal/flight"
)

// ConfigurationError reports an invalid configuration value or an
// unresolvable parameter path. It always surfaces before any trial runs.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func errf(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

type VehicleConfig struct {
	LiftoffMass float64 `yaml:"liftoff_mass"` // kg, including propellant
	DragCoeff   float64 `yaml:"drag_coefficient"`
	RefArea     float64 `yaml:"reference_area"` // m^2
	BrakeArea   float64 `yaml:"brake_area"`     // extra Cd*A at full deployment
}

type MotorConfig struct {
	Thrust         float64 `yaml:"thrust"`    // average thrust, N
	BurnTime       float64 `yaml:"burn_time"` // s
	PropellantMass float64 `yaml:"propellant_mass"`
}

type EnvironmentConfig struct {
	Gravity         float64 `yaml:"gravity"`
	SeaLevelDensity float64 `yaml:"sea_level_density"`
	ScaleHeight     float64 `yaml:"scale_height"`
	WindSpeed       float64 `yaml:"wind_speed_mps"`
}

type SimConfig struct {
	Dt            float64 `yaml:"dt"` // integration step
	MaxFlightTime float64 `yaml:"max_flight_time"`
	AltitudeNoise float64 `yaml:"altitude_noise"` // sensor noise std, m
	VelocityNoise float64 `yaml:"velocity_noise"` // sensor noise std, m/s
}

// Variation declares the probability distribution sampled for one parameter
// path. Kind-specific fields: normal uses mean/std, uniform uses min/max,
// truncated_normal uses all four.
type Variation struct {
	Dist string  `yaml:"dist"`
	Mean float64 `yaml:"mean"`
	Std  float64 `yaml:"std"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
}

const (
	DistNormal          = "normal"
	DistUniform         = "uniform"
	DistTruncatedNormal = "truncated_normal"
)

// Validate checks the distribution spec for path (used in error messages).
func (v Variation) Validate(path string) error {
	switch v.Dist {
	case DistNormal:
		if v.Std < 0 {
			return errf(path, "std must be non-negative, got %g", v.Std)
		}
	case DistUniform:
		if v.Min > v.Max {
			return errf(path, "inverted bounds [%g, %g]", v.Min, v.Max)
		}
	case DistTruncatedNormal:
		if v.Std < 0 {
			return errf(path, "std must be non-negative, got %g", v.Std)
		}
		if v.Min > v.Max {
			return errf(path, "inverted bounds [%g, %g]", v.Min, v.Max)
		}
		if v.Mean < v.Min || v.Mean > v.Max {
			return errf(path, "mean %g outside [%g, %g]", v.Mean, v.Min, v.Max)
		}
	default:
		return errf(path, "unknown distribution kind %q", v.Dist)
	}
	return nil
}

type MonteCarloConfig struct {
	Trials     int   `yaml:"trials"`  // base sample size N
	Workers    int   `yaml:"workers"` // 0 means GOMAXPROCS
	Seed       int64 `yaml:"seed"`
	MinSuccess int   `yaml:"min_success"` // usable rows required by the analyzer
	Bootstrap  int   `yaml:"bootstrap"`   // bootstrap resamples for CIs

	Variations map[string]Variation `yaml:"variations"`
}

// Config is the full simulation configuration. The base config is shared
// read-only across trials; the trial runner works on value copies and only
// ever mutates scalar fields, so the Variations map is safe to share.
type Config struct {
	Vehicle     VehicleConfig     `yaml:"vehicle"`
	Motor       MotorConfig       `yaml:"motor"`
	Environment EnvironmentConfig `yaml:"environment"`
	Sim         SimConfig         `yaml:"sim"`
	Control     control.Config    `yaml:"control"`
	MonteCarlo  MonteCarloConfig  `yaml:"montecarlo"`
}

func DefaultConfig() *Config {
	return &Config{
		Vehicle: VehicleConfig{
			LiftoffMass: 22.0,
			DragCoeff:   0.45,
			RefArea:     0.00785,
			BrakeArea:   0.004,
		},
		Motor: MotorConfig{
			Thrust:         1800.0,
			BurnTime:       3.0,
			PropellantMass: 6.0,
		},
		Environment: EnvironmentConfig{
			Gravity:         9.80665,
			SeaLevelDensity: 1.225,
			ScaleHeight:     8500.0,
			WindSpeed:       2.0,
		},
		Sim: SimConfig{
			Dt:            0.005,
			MaxFlightTime: 300.0,
		},
		Control: control.Config{
			Kind:          control.KindPID,
			TargetApogee:  3000.0,
			SampleRate:    20.0,
			MaxDeployment: 1.0,
			RateLimit:     2.0,
			AltitudeAlpha: 0.6,
			VelocityAlpha: 0.4,
			OvershootBias: 1.0,
			Kp:            0.02,
			Ki:            0.001,
			Kd:            0.01,
			IntegralLimit: 200.0,
			Hysteresis:    15.0,
			Horizon:       10,
			Tolerance:     1.0,
			MaxIterations: 24,
		},
		MonteCarlo: MonteCarloConfig{
			Trials:     256,
			Seed:       42,
			MinSuccess: 32,
			Bootstrap:  200,
			Variations: map[string]Variation{
				"environment.wind_speed_mps": {Dist: DistUniform, Min: 0, Max: 8},
				"motor.thrust":               {Dist: DistNormal, Mean: 1800, Std: 90},
				"vehicle.drag_coefficient":   {Dist: DistTruncatedNormal, Mean: 0.45, Std: 0.05, Min: 0.3, Max: 0.6},
			},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate fails fast on physically implausible values and bad variation
// declarations, before any simulation object is built.
func (c *Config) Validate() error {
	if c.Vehicle.LiftoffMass <= 0 {
		return errf("vehicle.liftoff_mass", "must be positive, got %g", c.Vehicle.LiftoffMass)
	}
	if c.Motor.PropellantMass <= 0 || c.Motor.PropellantMass >= c.Vehicle.LiftoffMass {
		return errf("motor.propellant_mass", "must be in (0, liftoff mass), got %g", c.Motor.PropellantMass)
	}
	if c.Motor.Thrust <= 0 {
		return errf("motor.thrust", "must be positive, got %g", c.Motor.Thrust)
	}
	if c.Motor.BurnTime <= 0 {
		return errf("motor.burn_time", "must be positive, got %g", c.Motor.BurnTime)
	}
	if c.Vehicle.DragCoeff <= 0 || c.Vehicle.RefArea <= 0 {
		return errf("vehicle", "drag coefficient and reference area must be positive")
	}
	if c.Environment.Gravity <= 0 || c.Environment.SeaLevelDensity <= 0 || c.Environment.ScaleHeight <= 0 {
		return errf("environment", "gravity, density and scale height must be positive")
	}
	if c.Sim.Dt <= 0 {
		return errf("sim.dt", "must be positive, got %g", c.Sim.Dt)
	}
	if c.Sim.MaxFlightTime <= c.Motor.BurnTime {
		return errf("sim.max_flight_time", "must exceed burn time")
	}
	if err := c.Control.Validate(); err != nil {
		return err
	}
	if c.MonteCarlo.Trials < 1 {
		return errf("montecarlo.trials", "must be at least 1, got %d", c.MonteCarlo.Trials)
	}
	for path, v := range c.MonteCarlo.Variations {
		if err := v.Validate(path); err != nil {
			return err
		}
		if !Settable(path) {
			return errf(path, "does not resolve to a settable parameter")
		}
	}
	return nil
}

// BurnoutMass is the coast-phase mass used by the apogee predictor.
func (c *Config) BurnoutMass() float64 {
	return c.Vehicle.LiftoffMass - c.Motor.PropellantMass
}

// CoastModel derives the controller's simplified coast model from the
// physical configuration.
func (c *Config) CoastModel() control.CoastModel {
	m := c.BurnoutMass()
	rho := c.Environment.SeaLevelDensity
	return control.CoastModel{
		Gravity: c.Environment.Gravity,
		BaseK:   rho * c.Vehicle.DragCoeff * c.Vehicle.RefArea / (2 * m),
		BrakeK:  rho * c.Vehicle.BrakeArea / (2 * m),
	}
}

// EngineParams maps the configuration onto the point-mass engine. noiseSeed
// keys the sensor-noise stream for one flight.
func (c *Config) EngineParams(noiseSeed int64) flight.Params {
	return flight.Params{
		LiftoffMass:     c.Vehicle.LiftoffMass,
		DragCoeff:       c.Vehicle.DragCoeff,
		RefArea:         c.Vehicle.RefArea,
		BrakeArea:       c.Vehicle.BrakeArea,
		Thrust:          c.Motor.Thrust,
		BurnTime:        c.Motor.BurnTime,
		PropellantMass:  c.Motor.PropellantMass,
		Gravity:         c.Environment.Gravity,
		SeaLevelDensity: c.Environment.SeaLevelDensity,
		ScaleHeight:     c.Environment.ScaleHeight,
		WindSpeed:       c.Environment.WindSpeed,
		Dt:              c.Sim.Dt,
		ControlPeriod:   1.0 / c.Control.SampleRate,
		MaxFlightTime:   c.Sim.MaxFlightTime,
		AltitudeNoise:   c.Sim.AltitudeNoise,
		VelocityNoise:   c.Sim.VelocityNoise,
		NoiseSeed:       noiseSeed,
	}
}

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n-veld/apogee/internal/control"
)

func TestDefaultConfigValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero liftoff mass", func(c *Config) { c.Vehicle.LiftoffMass = 0 }},
		{"propellant above mass", func(c *Config) { c.Motor.PropellantMass = 50 }},
		{"negative thrust", func(c *Config) { c.Motor.Thrust = -1 }},
		{"zero dt", func(c *Config) { c.Sim.Dt = 0 }},
		{"bad controller kind", func(c *Config) { c.Control.Kind = "fuzzy" }},
		{"zero trials", func(c *Config) { c.MonteCarlo.Trials = 0 }},
		{"unknown variation path", func(c *Config) {
			c.MonteCarlo.Variations["nope.nothing"] = Variation{Dist: DistNormal, Mean: 1, Std: 0.1}
		}},
		{"bad variation spec", func(c *Config) {
			c.MonteCarlo.Variations["motor.thrust"] = Variation{Dist: DistUniform, Min: 10, Max: 1}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestVariationValidate(t *testing.T) {
	assert.NoError(t, Variation{Dist: DistNormal, Mean: 5, Std: 1}.Validate("p"))
	assert.NoError(t, Variation{Dist: DistUniform, Min: 0, Max: 1}.Validate("p"))
	assert.NoError(t, Variation{Dist: DistTruncatedNormal, Mean: 5, Std: 1, Min: 3, Max: 7}.Validate("p"))

	var cerr *ConfigurationError
	err := Variation{Dist: DistNormal, Std: -1}.Validate("p")
	require.ErrorAs(t, err, &cerr)

	assert.Error(t, Variation{Dist: DistUniform, Min: 2, Max: 1}.Validate("p"))
	assert.Error(t, Variation{Dist: DistTruncatedNormal, Mean: 9, Std: 1, Min: 3, Max: 7}.Validate("p"))
	assert.Error(t, Variation{Dist: "beta", Mean: 1}.Validate("p"))
}

func TestApply(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Apply(cfg, "motor.thrust", 2100))
	assert.Equal(t, 2100.0, cfg.Motor.Thrust)

	require.NoError(t, Apply(cfg, "environment.wind_speed_mps", 6.5))
	assert.Equal(t, 6.5, cfg.Environment.WindSpeed)

	var cerr *ConfigurationError
	err := Apply(cfg, "motor.oxidizer_ratio", 1.2)
	require.ErrorAs(t, err, &cerr)
}

func TestPathsAllSettable(t *testing.T) {
	paths := Paths()
	require.NotEmpty(t, paths)
	assert.IsIncreasing(t, paths)
	for _, p := range paths {
		assert.True(t, Settable(p), p)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apogee.yaml")
	cfg := DefaultConfig()
	cfg.Control.Kind = control.KindMPC
	cfg.Control.TargetApogee = 2500
	cfg.MonteCarlo.Trials = 64

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Control.Kind, loaded.Control.Kind)
	assert.Equal(t, cfg.Control.TargetApogee, loaded.Control.TargetApogee)
	assert.Equal(t, cfg.MonteCarlo.Trials, loaded.MonteCarlo.Trials)
	assert.Equal(t, cfg.Vehicle, loaded.Vehicle)
}

func TestPresets(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		require.NotNil(t, cfg, name)
		assert.NoError(t, cfg.Validate(), name)
	}
	assert.Nil(t, GetPreset("lunar"))
}

func TestCoastModel(t *testing.T) {
	cfg := DefaultConfig()
	m := cfg.CoastModel()
	assert.Greater(t, m.BaseK, 0.0)
	assert.Greater(t, m.BrakeK, 0.0)
	assert.Equal(t, cfg.Environment.Gravity, m.Gravity)
}

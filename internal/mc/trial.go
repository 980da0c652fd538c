package mc

import (
	"context"

	"go.uber.org/zap"

	"github.com/n-veld/apogee/internal/config"
	"github.com/n-veld/apogee/internal/control"
	"github.com/n-veld/apogee/internal/flight"
)

// Outcomes is the fixed scalar outcome vector extracted from one flight.
type Outcomes struct {
	Apogee          float64
	MaxVelocity     float64
	MaxAcceleration float64
	TimeToApogee    float64
	FlightTime      float64
	ImpactRange     float64
}

// OutcomeNames lists the selectable outcome scalars, in report order.
func OutcomeNames() []string {
	return []string{"apogee", "max_velocity", "max_acceleration", "time_to_apogee", "flight_time", "impact_range"}
}

// OutcomeValue selects one scalar from an outcome vector by name.
func OutcomeValue(o Outcomes, name string) (float64, bool) {
	switch name {
	case "apogee":
		return o.Apogee, true
	case "max_velocity":
		return o.MaxVelocity, true
	case "max_acceleration":
		return o.MaxAcceleration, true
	case "time_to_apogee":
		return o.TimeToApogee, true
	case "flight_time":
		return o.FlightTime, true
	case "impact_range":
		return o.ImpactRange, true
	}
	return 0, false
}

// Record is the immutable result of one trial: the sampled parameter
// overrides, the outcome vector, and a success flag with error detail.
type Record struct {
	Index    int
	Params   map[string]float64
	Outcomes Outcomes
	OK       bool
	Err      string
}

// Runner executes single trials against a shared read-only base config.
type Runner struct {
	base *config.Config
	log  *zap.Logger
}

func NewRunner(base *config.Config, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{base: base, log: log}
}

// Run executes one trial: clone the base config, apply the sampled
// overrides, build a fresh controller, fly, extract outcomes. A failing
// trial is recorded, never propagated; one bad draw must not abort the
// batch.
func (r *Runner) Run(ctx context.Context, index int, assign map[string]float64, noiseSeed int64) Record {
	rec := Record{Index: index, Params: assign}

	cfg := *r.base
	for path, v := range assign {
		if err := config.Apply(&cfg, path, v); err != nil {
			rec.Err = err.Error()
			return rec
		}
	}

	// Fresh controller per trial; the reset contract is satisfied by
	// construction, never by reuse from a pool.
	loop, err := control.NewLoop(cfg.Control, nil, cfg.CoastModel(), r.log)
	if err != nil {
		rec.Err = err.Error()
		return rec
	}

	engine := flight.NewPointMass(cfg.EngineParams(noiseSeed))
	sum, err := engine.Fly(ctx, func(alt, vel, dt float64) float64 {
		cmd, _ := loop.Tick(alt, vel, dt)
		return cmd
	})
	if err != nil {
		r.log.Debug("trial failed", zap.Int("trial", index), zap.Error(err))
		rec.Err = err.Error()
		return rec
	}

	rec.OK = true
	rec.Outcomes = Outcomes{
		Apogee:          sum.Apogee,
		MaxVelocity:     sum.MaxVelocity,
		MaxAcceleration: sum.MaxAcceleration,
		TimeToApogee:    sum.TimeToApogee,
		FlightTime:      sum.FlightTime,
		ImpactRange:     sum.ImpactRange,
	}
	return rec
}

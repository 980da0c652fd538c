package mc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n-veld/apogee/internal/config"
)

func batchConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Sim.Dt = 0.01
	return cfg
}

func smallPlan(t *testing.T) *Plan {
	t.Helper()
	p, err := NewPlan(map[string]config.Variation{
		"motor.thrust":               {Dist: config.DistNormal, Mean: 1800, Std: 90},
		"environment.wind_speed_mps": {Dist: config.DistUniform, Min: 0, Max: 8},
	}, 3, 42)
	require.NoError(t, err)
	return p
}

func TestDriverDeterministicAcrossWorkerCounts(t *testing.T) {
	plan := smallPlan(t)
	runner := NewRunner(batchConfig(), nil)

	serial := (&Driver{Runner: runner, Workers: 1}).Run(context.Background(), plan)
	parallel := (&Driver{Runner: runner, Workers: 4}).Run(context.Background(), plan)

	require.Equal(t, plan.Trials(), len(serial.Records))
	require.Equal(t, len(serial.Records), len(parallel.Records))
	for i := range serial.Records {
		assert.Equal(t, serial.Records[i], parallel.Records[i], "trial %d", i)
	}
}

func TestDriverOneRecordPerTrial(t *testing.T) {
	plan := smallPlan(t)
	batch := (&Driver{Runner: NewRunner(batchConfig(), nil)}).Run(context.Background(), plan)

	require.Len(t, batch.Records, plan.Trials())
	assert.Equal(t, plan.Trials(), batch.Requested)
	assert.Equal(t, plan.Trials(), batch.Completed)
	for i, r := range batch.Records {
		assert.Equal(t, i, r.Index)
		assert.True(t, r.OK, "trial %d: %s", i, r.Err)
	}
	assert.Len(t, batch.OutcomeValues("apogee"), plan.Trials())
}

func TestDriverFailureIsolation(t *testing.T) {
	// Half the burn-time draws are non-positive and must fail their trial
	// without taking the batch down.
	plan, err := NewPlan(map[string]config.Variation{
		"motor.burn_time": {Dist: config.DistUniform, Min: -2, Max: 2},
	}, 8, 42)
	require.NoError(t, err)

	batch := (&Driver{Runner: NewRunner(batchConfig(), nil), Workers: 2}).Run(context.Background(), plan)

	assert.Equal(t, plan.Trials(), batch.Completed)
	assert.Greater(t, batch.Failed, 0)
	assert.Less(t, batch.Failed, batch.Completed)
	for _, r := range batch.Records {
		if !r.OK {
			assert.NotEmpty(t, r.Err)
		}
	}
	assert.Len(t, batch.Successful(), batch.Completed-batch.Failed)
}

func TestDriverCanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan := smallPlan(t)
	batch := (&Driver{Runner: NewRunner(batchConfig(), nil)}).Run(ctx, plan)

	assert.Equal(t, 0, batch.Completed)
	for _, r := range batch.Records {
		assert.False(t, r.OK)
		assert.Equal(t, "not run: batch canceled", r.Err)
	}
}

func TestDriverProgressReporting(t *testing.T) {
	plan := smallPlan(t)
	var seen []Progress
	d := &Driver{
		Runner:     NewRunner(batchConfig(), nil),
		Workers:    1, // serialize so the callback slice needs no lock
		OnProgress: func(p Progress) { seen = append(seen, p) },
	}
	d.Run(context.Background(), plan)

	require.Len(t, seen, plan.Trials())
	last := seen[len(seen)-1]
	assert.Equal(t, plan.Trials(), last.Done)
	assert.Equal(t, plan.Trials(), last.Total)
	for i, p := range seen {
		assert.Equal(t, i+1, p.Done)
	}
}

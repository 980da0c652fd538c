package control_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/n-veld/apogee/internal/control"
)

const gravity = 9.80665

func pidConfig() control.Config {
	return control.Config{
		Kind:          control.KindPID,
		TargetApogee:  3000,
		SampleRate:    10,
		MaxDeployment: 1.0,
		RateLimit:     50, // wide enough not to mask strategy output
		AltitudeAlpha: 0.6,
		VelocityAlpha: 0.4,
		Kp:            0.5,
		Ki:            0.01,
		Kd:            0.1,
	}
}

func coastModel() control.CoastModel {
	return control.CoastModel{Gravity: gravity, BaseK: 1e-4, BrakeK: 3e-4}
}

// altPredictor treats the raw altitude as the predicted apogee, which lets
// tests drive the error term directly.
func altPredictor(altitude, velocity float64) float64 { return altitude }

func mustLoop(cfg control.Config, predict control.Predictor) *control.Loop {
	loop, err := control.NewLoop(cfg, predict, coastModel(), nil)
	Expect(err).NotTo(HaveOccurred())
	return loop
}

func runTicks(loop *control.Loop, ticks [][2]float64, dt float64) []float64 {
	out := make([]float64, len(ticks))
	for i, tk := range ticks {
		cmd, err := loop.Tick(tk[0], tk[1], dt)
		Expect(err).NotTo(HaveOccurred())
		out[i] = cmd
	}
	return out
}

var _ = Describe("Loop construction", func() {
	DescribeTable("rejects invalid configuration",
		func(mutate func(*control.Config), want error) {
			cfg := pidConfig()
			mutate(&cfg)
			_, err := control.NewLoop(cfg, nil, coastModel(), nil)
			Expect(err).To(MatchError(want))
		},
		Entry("unknown kind", func(c *control.Config) { c.Kind = "lqr" }, control.ErrUnknownKind),
		Entry("zero target", func(c *control.Config) { c.TargetApogee = 0 }, control.ErrTargetApogee),
		Entry("zero sample rate", func(c *control.Config) { c.SampleRate = 0 }, control.ErrNonPositiveInterval),
		Entry("deployment above one", func(c *control.Config) { c.MaxDeployment = 1.2 }, control.ErrDeploymentBounds),
		Entry("negative deployment", func(c *control.Config) { c.MaxDeployment = -0.1 }, control.ErrDeploymentBounds),
		Entry("zero rate limit", func(c *control.Config) { c.RateLimit = 0 }, control.ErrRateLimit),
		Entry("alpha zero", func(c *control.Config) { c.AltitudeAlpha = 0 }, control.ErrFilterAlpha),
		Entry("alpha above one", func(c *control.Config) { c.VelocityAlpha = 1.5 }, control.ErrFilterAlpha),
		Entry("mpc without horizon", func(c *control.Config) { c.Kind = control.KindMPC; c.Horizon = 0 }, control.ErrHorizon),
	)

	It("rejects non-positive tick intervals", func() {
		loop := mustLoop(pidConfig(), nil)
		_, err := loop.Tick(1000, 50, 0)
		Expect(err).To(MatchError(control.ErrNonPositiveInterval))
		_, err = loop.Tick(1000, 50, -0.1)
		Expect(err).To(MatchError(control.ErrNonPositiveInterval))
	})
})

var _ = Describe("Filter stage", func() {
	It("passes the first observation through unfiltered", func() {
		loop := mustLoop(pidConfig(), altPredictor)
		_, err := loop.Tick(1234.5, 87.6, 0.1)
		Expect(err).NotTo(HaveOccurred())

		st := loop.State()
		Expect(st.FilteredAltitude).To(Equal(1234.5))
		Expect(st.FilteredVelocity).To(Equal(87.6))
		Expect(st.Initialized).To(BeTrue())
	})

	It("blends subsequent observations exponentially", func() {
		cfg := pidConfig()
		loop := mustLoop(cfg, altPredictor)
		loop.Tick(1000, 100, 0.1)
		loop.Tick(1100, 90, 0.1)

		st := loop.State()
		Expect(st.FilteredAltitude).To(BeNumerically("~", 0.6*1100+0.4*1000, 1e-9))
		Expect(st.FilteredVelocity).To(BeNumerically("~", 0.4*90+0.6*100, 1e-9))
	})
})

var _ = Describe("PID strategy", func() {
	It("reproduces the documented single-tick command", func() {
		// kp=0.5 ki=0.01 kd=0.1, target 3000, alt 2950, vel 40, dt 0.1.
		pid := control.NewPID(pidConfig(), control.Ballistic(gravity))
		st := &control.State{FilteredAltitude: 2950, FilteredVelocity: 40, Initialized: true}

		cmd, err := pid.Decide(st, 0.1)
		Expect(err).NotTo(HaveOccurred())

		e := 2950 + 40*40/(2*gravity) - 3000
		Expect(st.PreviousError).To(BeNumerically("~", e, 1e-9))
		Expect(st.IntegralError).To(BeNumerically("~", e*0.1, 1e-9))
		// 0.5e + 0.01(e*0.1) + 0.1(e/0.1) far exceeds 1, so it clamps.
		Expect(cmd).To(Equal(1.0))
	})

	It("yields the raw formula value when inside [0,1]", func() {
		cfg := pidConfig()
		cfg.Kp = 0.01
		cfg.Ki = 0
		cfg.Kd = 0
		pid := control.NewPID(cfg, control.Ballistic(gravity))
		st := &control.State{FilteredAltitude: 2950, FilteredVelocity: 40, Initialized: true}

		cmd, err := pid.Decide(st, 0.1)
		Expect(err).NotTo(HaveOccurred())

		e := 2950 + 40*40/(2*gravity) - 3000
		Expect(cmd).To(BeNumerically("~", 0.01*e, 1e-12))
	})

	It("clamps the integral when an anti-windup limit is set", func() {
		cfg := pidConfig()
		cfg.IntegralLimit = 1.0
		pid := control.NewPID(cfg, altPredictor)
		st := &control.State{FilteredAltitude: 4000, Initialized: true}

		for i := 0; i < 100; i++ {
			pid.Decide(st, 0.1)
		}
		Expect(st.IntegralError).To(BeNumerically("<=", 1.0))
	})
})

var _ = Describe("Bang-bang strategy", func() {
	It("deploys only above the hysteresis band", func() {
		cfg := pidConfig()
		cfg.Kind = control.KindBangBang
		cfg.Hysteresis = 20
		bb := control.NewBangBang(cfg, altPredictor)

		st := &control.State{FilteredAltitude: 3015, Initialized: true}
		cmd, _ := bb.Decide(st, 0.1)
		Expect(cmd).To(Equal(0.0))

		st.FilteredAltitude = 3025
		cmd, _ = bb.Decide(st, 0.1)
		Expect(cmd).To(Equal(1.0))
	})
})

var _ = Describe("MPC strategy", func() {
	It("finds a deployment that puts the modeled apogee on target", func() {
		cfg := pidConfig()
		cfg.Kind = control.KindMPC
		cfg.TargetApogee = 2900
		cfg.Horizon = 5
		cfg.Tolerance = 1.0
		cfg.MaxIterations = 40

		model := coastModel()
		mpc := control.NewMPC(cfg, model)
		st := &control.State{FilteredAltitude: 2000, FilteredVelocity: 150, Initialized: true}

		cmd, err := mpc.Decide(st, 0.1)
		Expect(err).NotTo(HaveOccurred())
		Expect(cmd).To(BeNumerically(">", 0))
		Expect(cmd).To(BeNumerically("<", 1))
		Expect(model.Apogee(2000, 150, cmd, 0.1, 5)).To(BeNumerically("~", 2900, 1.0))
	})

	It("saturates cleanly at both ends", func() {
		cfg := pidConfig()
		cfg.Kind = control.KindMPC
		cfg.Horizon = 5
		model := coastModel()
		mpc := control.NewMPC(cfg, model)

		// Way below target: nothing to brake.
		st := &control.State{FilteredAltitude: 100, FilteredVelocity: 10, Initialized: true}
		cmd, err := mpc.Decide(st, 0.1)
		Expect(err).NotTo(HaveOccurred())
		Expect(cmd).To(Equal(0.0))

		// Way above target: full brakes.
		cfg.TargetApogee = 500
		mpc = control.NewMPC(cfg, model)
		st = &control.State{FilteredAltitude: 2000, FilteredVelocity: 200, Initialized: true}
		cmd, err = mpc.Decide(st, 0.1)
		Expect(err).NotTo(HaveOccurred())
		Expect(cmd).To(Equal(1.0))
	})

	It("degrades to the previous command when the search cannot converge", func() {
		cfg := pidConfig()
		cfg.Kind = control.KindMPC
		cfg.TargetApogee = 2900
		cfg.Horizon = 5
		cfg.Tolerance = 1e-9
		cfg.MaxIterations = 1

		loop := mustLoop(cfg, nil)
		cmd, err := loop.Tick(2000, 150, 0.1)
		Expect(err).NotTo(HaveOccurred())
		Expect(cmd).To(Equal(0.0)) // held at the initial command

		cmd, err = loop.Tick(2005, 149, 0.1)
		Expect(err).NotTo(HaveOccurred())
		Expect(cmd).To(Equal(0.0))
	})
})

var _ = Describe("Actuator limits", func() {
	climb := func(n int) [][2]float64 {
		ticks := make([][2]float64, n)
		for i := range ticks {
			ticks[i] = [2]float64{2000 + 20*float64(i), 150 - float64(i)}
		}
		return ticks
	}

	It("never commands outside [0, max deployment] for any strategy", func() {
		for _, kind := range []control.Kind{control.KindPID, control.KindBangBang, control.KindMPC} {
			cfg := pidConfig()
			cfg.Kind = kind
			cfg.MaxDeployment = 0.8
			cfg.Horizon = 5
			cfg.TargetApogee = 2200 // force active braking

			loop := mustLoop(cfg, nil)
			for _, cmd := range runTicks(loop, climb(60), 0.1) {
				Expect(cmd).To(BeNumerically(">=", 0), "kind %s", kind)
				Expect(cmd).To(BeNumerically("<=", 0.8), "kind %s", kind)
			}
		}
	})

	It("bounds the command slew to rate_limit*dt", func() {
		cfg := pidConfig()
		cfg.Kind = control.KindBangBang
		cfg.RateLimit = 2.0
		cfg.Hysteresis = 0
		cfg.AltitudeAlpha = 1 // no smoothing so predictions flip hard
		loop := mustLoop(cfg, altPredictor)

		dt := 0.1
		prev := 0.0
		for i := 0; i < 40; i++ {
			alt := 4000.0 // predicted far above target
			if i%3 == 0 {
				alt = 1000.0 // and periodically far below
			}
			cmd, err := loop.Tick(alt, 50, dt)
			Expect(err).NotTo(HaveOccurred())
			Expect(math.Abs(cmd-prev)).To(BeNumerically("<=", cfg.RateLimit*dt+1e-12))
			prev = cmd
		}
	})
})

var _ = Describe("Reset contract", func() {
	seqA := [][2]float64{{2000, 140}, {2100, 135}, {2200, 130}, {2300, 125}}
	seqB := [][2]float64{{2900, 60}, {2910, 55}, {2920, 50}, {2930, 45}}

	smallGains := func() control.Config {
		cfg := pidConfig()
		cfg.Kp = 0.002
		cfg.Ki = 0.0005
		cfg.Kd = 0.0005
		return cfg
	}

	It("replays identical command sequences after reset", func() {
		loop := mustLoop(smallGains(), control.Ballistic(gravity))

		first := runTicks(loop, seqA, 0.1)
		loop.Reset()
		second := runTicks(loop, seqA, 0.1)

		Expect(second).To(Equal(first))
		loop.Reset()
		Expect(loop.State()).To(Equal(control.State{}))
	})

	It("tolerates repeated resets", func() {
		loop := mustLoop(smallGains(), control.Ballistic(gravity))
		runTicks(loop, seqA, 0.1)
		loop.Reset()
		loop.Reset()
		loop.Reset()
		Expect(loop.State()).To(Equal(control.State{}))
	})

	It("exposes contamination when reuse skips the reset", func() {
		contaminated := mustLoop(smallGains(), control.Ballistic(gravity))
		runTicks(contaminated, seqA, 0.1)
		dirty := runTicks(contaminated, seqB, 0.1)

		fresh := mustLoop(smallGains(), control.Ballistic(gravity))
		clean := runTicks(fresh, seqB, 0.1)

		Expect(dirty).NotTo(Equal(clean))
	})
})

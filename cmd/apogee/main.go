package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/n-veld/apogee/internal/config"
	"github.com/n-veld/apogee/internal/control"
	"github.com/n-veld/apogee/internal/flight"
	"github.com/n-veld/apogee/internal/mc"
	"github.com/n-veld/apogee/internal/optim"
	"github.com/n-veld/apogee/internal/report"
	"github.com/n-veld/apogee/internal/storage"
	"github.com/n-veld/apogee/internal/tui"
)

var (
	configFile string
	preset     string
	verbose    bool

	// flight/control overrides
	controller   string
	targetApogee float64

	// monte carlo
	trials   int
	workers  int
	seed     int64
	outcome  string
	live     bool
	outDir   string
	timeoutS float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "apogee",
		Short: "air-brakes apogee control and Monte Carlo sensitivity analysis",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate a single controlled flight",
		RunE:  runFlight,
	}
	runCmd.Flags().StringVar(&controller, "controller", "", "controller kind (pid|bangbang|mpc)")
	runCmd.Flags().Float64Var(&targetApogee, "target", 0, "target apogee [m]")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "sensor noise seed")

	mcCmd := &cobra.Command{
		Use:   "mc",
		Short: "run a Monte Carlo batch with sensitivity analysis",
		RunE:  runMonteCarlo,
	}
	mcCmd.Flags().StringVar(&controller, "controller", "", "controller kind (pid|bangbang|mpc)")
	mcCmd.Flags().Float64Var(&targetApogee, "target", 0, "target apogee [m]")
	mcCmd.Flags().IntVar(&trials, "trials", 0, "base sample size N (total trials are N*(d+2))")
	mcCmd.Flags().IntVar(&workers, "workers", 0, "worker count (0 = all cores)")
	mcCmd.Flags().Int64Var(&seed, "seed", 0, "batch seed (0 = config seed)")
	mcCmd.Flags().StringVar(&outcome, "outcome", "apogee", "outcome scalar to analyze")
	mcCmd.Flags().BoolVar(&live, "live", false, "live progress view")
	mcCmd.Flags().StringVar(&outDir, "out", "", "directory to persist the batch")
	mcCmd.Flags().Float64Var(&timeoutS, "timeout", 0, "batch timeout in seconds (0 = none)")

	pathsCmd := &cobra.Command{
		Use:   "paths",
		Short: "list parameter paths usable in variation declarations",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.Paths() {
				fmt.Println(p)
			}
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "apogee.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search PID gains for minimum apogee miss",
		RunE:  runTune,
	}
	tuneCmd.Flags().Float64Var(&targetApogee, "target", 0, "target apogee [m]")

	rootCmd.AddCommand(runCmd, mcCmd, pathsCmd, initCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// loadConfig resolves preset/file/defaults, applies CLI overrides, and
// validates before anything is built.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (have %v)", preset, config.ListPresets())
		}
	default:
		cfg = config.DefaultConfig()
	}

	if controller != "" {
		cfg.Control.Kind = control.Kind(controller)
	}
	if targetApogee > 0 {
		cfg.Control.TargetApogee = targetApogee
	}
	if trials > 0 {
		cfg.MonteCarlo.Trials = trials
	}
	if workers > 0 {
		cfg.MonteCarlo.Workers = workers
	}
	if seed != 0 {
		cfg.MonteCarlo.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runFlight(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	loop, err := control.NewLoop(cfg.Control, nil, cfg.CoastModel(), log)
	if err != nil {
		return err
	}

	engine := flight.NewPointMass(cfg.EngineParams(cfg.MonteCarlo.Seed))
	sum, err := engine.Fly(context.Background(), func(alt, vel, dt float64) float64 {
		cmdv, _ := loop.Tick(alt, vel, dt)
		return cmdv
	})
	if err != nil {
		return err
	}

	outcomes := mc.Outcomes{
		Apogee:          sum.Apogee,
		MaxVelocity:     sum.MaxVelocity,
		MaxAcceleration: sum.MaxAcceleration,
		TimeToApogee:    sum.TimeToApogee,
		FlightTime:      sum.FlightTime,
		ImpactRange:     sum.ImpactRange,
	}
	fmt.Println(report.FlightSummary(outcomes, cfg.Control.TargetApogee))
	fmt.Println(report.AltitudePlot(sum.Trajectory))
	fmt.Println()
	fmt.Println(report.DeploymentPlot(sum.Trajectory))
	return nil
}

// flyOnce runs one noiseless flight under the given config and returns the
// absolute apogee miss.
func flyOnce(ctx context.Context, cfg *config.Config, log *zap.Logger) (float64, error) {
	loop, err := control.NewLoop(cfg.Control, nil, cfg.CoastModel(), log)
	if err != nil {
		return 0, err
	}
	engine := flight.NewPointMass(cfg.EngineParams(cfg.MonteCarlo.Seed))
	sum, err := engine.Fly(ctx, func(alt, vel, dt float64) float64 {
		cmdv, _ := loop.Tick(alt, vel, dt)
		return cmdv
	})
	if err != nil {
		return 0, err
	}
	miss := sum.Apogee - cfg.Control.TargetApogee
	if miss < 0 {
		miss = -miss
	}
	return miss, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	factors := []float64{0.25, 0.5, 1, 2, 4}
	grid := optim.New(
		[]string{"kp", "ki", "kd"},
		[][]float64{
			optim.Scaled(cfg.Control.Kp, factors...),
			optim.Scaled(cfg.Control.Ki, factors...),
			optim.Scaled(cfg.Control.Kd, factors...),
		},
	)

	ctx := context.Background()
	best, miss, ok := grid.Search(ctx, func(params map[string]float64) (float64, error) {
		trial := *cfg
		trial.Control.Kp = params["kp"]
		trial.Control.Ki = params["ki"]
		trial.Control.Kd = params["kd"]
		return flyOnce(ctx, &trial, zap.NewNop())
	})
	if !ok {
		return fmt.Errorf("tune: every grid point failed")
	}

	fmt.Printf("best gains: kp=%.4g ki=%.4g kd=%.4g (apogee miss %.1f m)\n",
		best["kp"], best["ki"], best["kd"], miss)
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()
	if live {
		// Logs would tear the progress view.
		log = zap.NewNop()
	}

	plan, err := mc.NewPlan(cfg.MonteCarlo.Variations, cfg.MonteCarlo.Trials, cfg.MonteCarlo.Seed)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if timeoutS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutS*float64(time.Second)))
		defer cancel()
	}

	driver := &mc.Driver{
		Runner:  mc.NewRunner(cfg, log),
		Workers: cfg.MonteCarlo.Workers,
		Log:     log,
	}

	var batch *mc.Batch
	if live {
		prog := tea.NewProgram(tui.New(plan.Trials()))
		driver.OnProgress = func(p mc.Progress) { prog.Send(tui.ProgressMsg(p)) }

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		done := make(chan *mc.Batch, 1)
		go func() {
			b := driver.Run(ctx, plan)
			done <- b
			prog.Send(tui.DoneMsg{})
		}()
		if _, err := prog.Run(); err != nil {
			return err
		}
		cancel()
		batch = <-done
	} else {
		batch = driver.Run(ctx, plan)
	}

	fmt.Println(report.BatchSummary(batch, mc.OutcomeNames()))
	if hist := report.Histogram(batch.OutcomeValues(outcome), 30, outcome+" distribution"); hist != "" {
		fmt.Println(hist)
		fmt.Println()
	}

	var analyses []*mc.Analysis
	if plan.D() > 0 {
		analyzer := &mc.Analyzer{
			MinRows:   cfg.MonteCarlo.MinSuccess,
			Bootstrap: cfg.MonteCarlo.Bootstrap,
			Seed:      cfg.MonteCarlo.Seed,
		}
		analysis, err := analyzer.Analyze(plan, batch, outcome)
		if err != nil {
			return err
		}
		analyses = append(analyses, analysis)
		fmt.Println(report.Sensitivity(analysis))
	}

	if outDir != "" {
		store := storage.New(outDir)
		if err := store.Init(); err != nil {
			return err
		}
		id, err := store.SaveBatch(plan, batch, analyses)
		if err != nil {
			return err
		}
		fmt.Printf("saved batch %s\n", id)
	}
	return nil
}

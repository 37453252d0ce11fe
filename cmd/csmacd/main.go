package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iti/csmacd"
)

type cmdFlags struct {
	simTime  float64
	rounds   int
	stations int
	points   int
	delay    float64
	seed     uint64
	workers  int
	exp      string
	out      string
	trace    string
	name     string
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd(logger).ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("csmacd failed")
		stop()
		os.Exit(1)
	}
}

// NewRootCmd builds the csmacd command
func NewRootCmd(logger zerolog.Logger) *cobra.Command {
	fl := cmdFlags{}
	defaults := csmacd.DefaultSweepParams()

	cmd := &cobra.Command{
		Use:   "csmacd",
		Short: "Estimate CSMA/CD efficiency against offered load by Monte Carlo simulation",
		Long: `csmacd sweeps the offered load of a shared CSMA/CD channel, simulating each point
over several rounds, and writes the normalised offered load G, the efficiency S and the
analytic 1-persistent curves to a yaml or json result file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := buildSweepParams(cmd, fl)
			if err != nil {
				return err
			}

			if _, err := csmacd.CheckOutputFiles([]string{fl.out, fl.trace}); err != nil {
				return err
			}

			tm := csmacd.CreateTraceManager(fl.name, len(fl.trace) > 0)

			logger.Info().
				Int("stations", sp.Params.Stations).
				Int("points", sp.Points).
				Int("rounds", sp.Params.Rounds).
				Float64("simTime", sp.Params.SimTime).
				Float64("delay", sp.Params.DelayFraction).
				Msg("starting sweep")

			start := time.Now()
			sr, err := csmacd.Sweep(cmd.Context(), fl.name, sp, tm, logger)
			if err != nil {
				return err
			}

			peak := sr.Points[sr.Peak]
			logger.Info().
				Float64("G", peak.G).
				Float64("S", peak.S).
				Float64("deliveredBps", peak.DeliveredBps).
				Dur("elapsed", time.Since(start)).
				Msg("simulated peak")

			if err := sr.WriteToFile(fl.out); err != nil {
				return err
			}
			logger.Info().Str("file", fl.out).Msg("results saved")

			if tm.Active() {
				if err := tm.WriteToFile(fl.trace); err != nil {
					return err
				}
				logger.Info().Str("file", fl.trace).Msg("trace saved")
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&fl.simTime, "sim-time", defaults.Params.SimTime, "simulated seconds per round")
	flags.IntVar(&fl.rounds, "rounds", defaults.Params.Rounds, "rounds per offered-load point")
	flags.IntVar(&fl.stations, "stations", defaults.Params.Stations, "number of stations on the channel")
	flags.IntVar(&fl.points, "points", defaults.Points, "number of offered-load points")
	flags.Float64Var(&fl.delay, "delay", defaults.Params.DelayFraction, "propagation delay as a fraction of frame time")
	flags.Uint64Var(&fl.seed, "seed", defaults.Seed, "seed for reproducible runs (unset uses rngstream streams)")
	flags.IntVar(&fl.workers, "workers", defaults.Workers, "points simulated concurrently")
	flags.StringVar(&fl.exp, "exp", "", "experiment parameter file (yaml or json)")
	flags.StringVar(&fl.out, "out", "csmacd-results.yaml", "result file (yaml or json)")
	flags.StringVar(&fl.trace, "trace", "", "trace file (yaml or json); empty disables tracing")
	flags.StringVar(&fl.name, "name", "csmacd", "experiment name recorded in result and trace files")

	return cmd
}

// buildSweepParams starts from the defaults, applies the experiment file if one is
// named, and lets explicitly set flags override both
func buildSweepParams(cmd *cobra.Command, fl cmdFlags) (csmacd.SweepParams, error) {
	sp := csmacd.DefaultSweepParams()

	if len(fl.exp) > 0 {
		expCfg, err := csmacd.GetExpCfg(fl.exp)
		if err != nil {
			return sp, err
		}
		if err := csmacd.ApplyExpCfg(expCfg, &sp); err != nil {
			return sp, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("sim-time") {
		sp.Params.SimTime = fl.simTime
	}
	if flags.Changed("rounds") {
		sp.Params.Rounds = fl.rounds
	}
	if flags.Changed("stations") {
		sp.Params.Stations = fl.stations
	}
	if flags.Changed("points") {
		sp.Points = fl.points
	}
	if flags.Changed("delay") {
		sp.Params.DelayFraction = fl.delay
	}
	if flags.Changed("seed") {
		sp.Seed = fl.seed
		sp.Seeded = true
	}
	if flags.Changed("workers") {
		sp.Workers = fl.workers
	}

	return sp, sp.Validate()
}

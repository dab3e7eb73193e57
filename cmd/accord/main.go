package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/TobiasSchwering/AcCoRD/config"
	"github.com/TobiasSchwering/AcCoRD/rng"
	"github.com/TobiasSchwering/AcCoRD/sim"
	"github.com/TobiasSchwering/AcCoRD/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use embedded defaults)")
	seed := flag.Int64("seed", 0, "RNG seed for realization 0 (0 = time-based)")
	repeats := flag.Int("repeats", 0, "Number of realizations (0 = use config)")
	outputDir := flag.String("output-dir", ".", "Output directory for the per-realization and summary streams")
	finalTime := flag.Float64("final-time", 0, "Override the configured final simulation time (0 = use config)")
	warningOverride := flag.Bool("warning-override", false, "Proceed without pausing for operator confirmation on configuration warnings")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if len(cfg.Warnings) > 0 && !cfg.SimulationControl.WarningOverride && !*warningOverride {
		for _, w := range cfg.Warnings {
			slog.Warn("configuration warning", "message", w)
		}
		fmt.Fprintln(os.Stderr, "configuration warnings present; re-run with -warning-override to proceed")
		os.Exit(1)
	}

	runSeed := *seed
	if runSeed == 0 {
		runSeed = cfg.SimulationControl.Seed
	}
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
	}

	numRepeats := *repeats
	if numRepeats <= 0 {
		numRepeats = cfg.SimulationControl.Repeats
	}
	if numRepeats <= 0 {
		numRepeats = 1
	}

	if *finalTime > 0 {
		cfg.SimulationControl.FinalTime = *finalTime
	}

	simCfg, err := sim.FromConfig(cfg)
	if err != nil {
		slog.Error("failed to translate configuration", "error", err)
		os.Exit(exitCodeFor(err))
	}

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to open output streams", "error", err)
		os.Exit(1)
	}
	defer out.Close()

	start := time.Now()
	for i := 0; i < numRepeats; i++ {
		stream := rng.New(runSeed + int64(i))
		rz, err := sim.NewRealization(simCfg, stream)
		if err != nil {
			slog.Error("failed to build realization", "realization", i, "error", err)
			os.Exit(exitCodeFor(err))
		}
		if err := rz.Run(); err != nil {
			slog.Error("realization failed", "realization", i, "error", err)
			os.Exit(exitCodeFor(err))
		}
		out.WriteRealization(i, rz)
	}
	end := time.Now()

	out.WriteSummary(*configPath, runSeed, numRepeats, start, end)
}

func exitCodeFor(err error) int {
	if fe, ok := err.(*sim.FatalError); ok {
		return fe.ExitCode()
	}
	return 1
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"adcpoti/core"
	"adcpoti/host/sim"
)

var (
	profilePath = flag.String("profile", "sim.yaml", "Simulation profile (defaults are used if missing)")
	duration    = flag.Duration("duration", 0, "Override the simulated duration")
	writeDef    = flag.String("write-default", "", "Write the default profile to this file and exit")
	trace       = flag.Bool("trace", false, "Print the last conversions")
	verbose     = flag.Bool("verbose", false, "Enable verbose output")
)

func main() {
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if *writeDef != "" {
		if err := sim.Default().Save(*writeDef); err != nil {
			log.Fatal().Err(err).Msg("failed to write profile")
		}
		log.Info().Str("path", *writeDef).Msg("default profile written")
		return
	}

	profile, err := sim.Load(*profilePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *profilePath).Msg("failed to load profile")
	}
	if *duration > 0 {
		profile.Duration = *duration
	}

	machine, err := sim.New(profile, log)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid profile")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	start := time.Now()
	report, err := machine.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("simulation aborted")
	}
	log.Debug().Dur("wall", time.Since(start)).Msg("run took")

	printReport(report)

	if *trace {
		fmt.Println()
		fmt.Println("last conversions:")
		for _, evt := range core.TraceEvents() {
			fmt.Printf("  sample=%3d primary=%-3s debug=%v\n", evt.Sample, evt.Primary, evt.Debug)
		}
	}
}

func printReport(r *sim.Report) {
	fmt.Printf("simulated:          %v (%d cycles)\n", r.Elapsed, r.Cycles)
	fmt.Printf("conversion period:  %v\n", r.ConversionPeriod)
	fmt.Printf("conversions:        %d\n", r.Conversions)
	fmt.Printf("interrupts:         %d\n", r.Interrupts)
	fmt.Printf("dropped samples:    %d\n", r.Dropped)
	fmt.Printf("idle iterations:    %d\n", r.IdleSteps)
	fmt.Printf("primary duty:       %5.1f%% (%d transitions)\n", r.PrimaryDuty*100, r.PrimaryTransitions)
	fmt.Printf("debug duty:         %5.1f%% (%d pulses)\n", r.DebugDuty*100, r.DebugPulses)
	fmt.Printf("last sample:        %d\n", r.LastSample)
}

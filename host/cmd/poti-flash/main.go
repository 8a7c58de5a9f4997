package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"adcpoti/host/mcu"
	"adcpoti/host/serial"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", serial.BaudOptiboot, "Bootloader baud rate (57600 for old Nano bootloaders)")
	verify  = flag.Bool("verify", true, "Read flash back after writing")
	timeout = flag.Duration("timeout", 30*time.Second, "Give up after this long")
	verbose = flag.Bool("verbose", false, "Enable verbose output")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: poti-flash [flags] firmware.hex\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	img, err := mcu.LoadHexFile(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load image")
	}
	log.Info().Uint32("base", img.Base).Int("bytes", len(img.Data)).Msg("image loaded")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	board := mcu.NewMCU(log)
	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	if err := board.ConnectWithConfig(cfg); err != nil {
		log.Fatal().Err(err).Str("device", *device).Msg("failed to connect")
	}
	defer board.Close()

	start := time.Now()
	err = mcu.Flash(ctx, board, img, mcu.FlashOptions{
		Verify: *verify,
		Progress: func(done, total int) {
			fmt.Fprintf(os.Stderr, "\rwriting %5d/%d bytes", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("flash failed")
		board.Close()
		os.Exit(1)
	}

	log.Info().Dur("took", time.Since(start)).Msg("flash complete")
}

// Command chaosdelay runs the chaos delay device on the host.
//
// Usage:
//
//	chaosdelay [flags]
//
// Live mode plays a test tone through the device to the default sound card
// and reads the controls from the keyboard, a MIDI controller or nothing.
// With -render it processes the test tone offline and prints per-second
// analysis instead.
//
// Examples:
//
//	chaosdelay
//	chaosdelay -surface midi -midi-port nanoKONTROL
//	chaosdelay -render 5 -shape sine -tone 440
//
// Every flag has a CHAOS_* environment fallback.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pion/logging"

	"github.com/cwbudde/algo-chaosdelay/dsp/core"
	dspsignal "github.com/cwbudde/algo-chaosdelay/dsp/signal"
	"github.com/cwbudde/algo-chaosdelay/internal/config"
	"github.com/cwbudde/algo-chaosdelay/internal/logx"
	"github.com/cwbudde/algo-chaosdelay/pedal"
	"github.com/cwbudde/algo-chaosdelay/pedal/patch"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "chaosdelay: %v\n", err)
		os.Exit(2)
	}

	loggers, err := newLoggers(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chaosdelay: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Offline() {
		err = render(os.Stdout, cfg, loggers)
	} else {
		err = live(ctx, cfg, loggers)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "chaosdelay: %v\n", err)
		os.Exit(1)
	}
}

// newLoggers builds the logger factory at cfg.LogLevel. Load validates the
// level, so an error here means cfg did not come from Load.
func newLoggers(cfg config.Config, w io.Writer) (logging.LoggerFactory, error) {
	level, err := logx.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logx.NewFactory(level, w), nil
}

func deviceConfig(cfg config.Config) (pedal.Config, error) {
	dc := pedal.DefaultConfig()
	dc.SampleRate = cfg.SampleRate
	dc.BlockSize = cfg.BlockSize
	dc.Debounce = cfg.Debounce
	dc.Seed = cfg.Seed
	if cfg.PatchFile != "" {
		raw, err := os.ReadFile(cfg.PatchFile)
		if err != nil {
			return dc, err
		}
		g, err := patch.Parse(raw)
		if err != nil {
			return dc, fmt.Errorf("%s: %w", cfg.PatchFile, err)
		}
		dc.Patch = &g
	}
	return dc, nil
}

func testTone(cfg config.Config) (*dspsignal.Oscillator, error) {
	shape, err := dspsignal.ParseShape(cfg.Shape)
	if err != nil {
		return nil, err
	}
	return dspsignal.NewOscillator(
		[]core.ProcessorOption{core.WithSampleRate(cfg.SampleRate), core.WithBlockSize(cfg.BlockSize)},
		dspsignal.WithShape(shape),
		dspsignal.WithFrequency(cfg.ToneHz),
		dspsignal.WithSeed(cfg.Seed),
	)
}

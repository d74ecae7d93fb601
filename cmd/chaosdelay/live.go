package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pion/logging"

	"github.com/cwbudde/algo-chaosdelay/internal/config"
	"github.com/cwbudde/algo-chaosdelay/internal/hostaudio"
	"github.com/cwbudde/algo-chaosdelay/internal/surface"
	"github.com/cwbudde/algo-chaosdelay/pedal"
	"github.com/cwbudde/algo-chaosdelay/pedal/control"
	"github.com/cwbudde/algo-chaosdelay/pedal/display"
)

// outputBlocks is the sound card buffer, in device blocks.
const outputBlocks = 4

func live(ctx context.Context, cfg config.Config, loggers logging.LoggerFactory) error {
	log := loggers.NewLogger("surface")
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	surf, closeSurface, err := openSurface(ctx, cancel, cfg, log)
	if err != nil {
		return err
	}
	defer closeSurface()

	dc, err := deviceConfig(cfg)
	if err != nil {
		return err
	}
	dev, err := pedal.New(dc, surf, pedal.WithLoggerFactory(loggers))
	if err != nil {
		return err
	}
	osc, err := testTone(cfg)
	if err != nil {
		return err
	}

	in := make([]float64, cfg.BlockSize)
	stream, err := hostaudio.NewStream(cfg.BlockSize, func(outL, outR []float64) {
		osc.Fill(in)
		dev.Process(in, outL, outR)
	})
	if err != nil {
		return err
	}
	latency := time.Duration(outputBlocks * float64(cfg.BlockSize) / cfg.SampleRate * float64(time.Second))
	player, err := hostaudio.NewPlayer(int(cfg.SampleRate), latency, stream)
	if err != nil {
		return err
	}
	defer player.Close()
	player.Play()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		_ = dev.RunControl(ctx, cfg.ControlInterval)
	}()
	go func() {
		defer wg.Done()
		_ = dev.Telemetry().Drain(ctx, nil)
	}()
	go func() {
		defer wg.Done()
		showLevel(ctx, dev.Display())
	}()

	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

// openSurface starts the configured control surface. cancel is called
// when the surface asks to quit.
func openSurface(ctx context.Context, cancel context.CancelFunc, cfg config.Config, log logging.LeveledLogger) (control.Surface, func(), error) {
	switch cfg.Surface {
	case config.SurfaceKeys:
		keys := surface.NewKeys(os.Stdin, log)
		if err := keys.Start(); err != nil {
			if errors.Is(err, surface.ErrNotTerminal) {
				log.Warnf("stdin is not a terminal, using idle controls")
				return surface.Idle(), func() {}, nil
			}
			return nil, nil, err
		}
		fmt.Fprintf(os.Stdout, "%s\r\n", surface.KeyHelp)
		go func() {
			select {
			case <-keys.Quit():
				cancel()
			case <-ctx.Done():
			}
		}()
		return keys, func() { _ = keys.Stop() }, nil
	case config.SurfaceMIDI:
		m := surface.NewMIDI(surface.DefaultMIDIMap(), log)
		if err := m.Open(cfg.MIDIPort); err != nil {
			return nil, nil, err
		}
		return m, func() { _ = m.Close() }, nil
	default:
		return surface.Idle(), func() {}, nil
	}
}

// showLevel redraws the LED bar whenever the level changes.
func showLevel(ctx context.Context, d *display.Display) {
	style := display.NewStyle(nil)
	draw := func() {
		fmt.Fprintf(os.Stdout, "\rchaos %s %d  ", style.Bar(d.Level()), d.Level())
	}
	draw()
	for {
		select {
		case <-ctx.Done():
			fmt.Fprint(os.Stdout, "\r\n")
			return
		case <-d.Changes():
			draw()
		}
	}
}

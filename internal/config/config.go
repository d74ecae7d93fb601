// Package config loads the chaosdelay runtime configuration from flags,
// falling back to CHAOS_* environment variables and then to defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cwbudde/algo-chaosdelay/dsp/signal"
	"github.com/cwbudde/algo-chaosdelay/dsp/window"
	"github.com/cwbudde/algo-chaosdelay/internal/logx"
)

// Surface kinds.
const (
	SurfaceKeys = "keys"
	SurfaceMIDI = "midi"
	SurfaceIdle = "idle"
)

// Config holds all runtime configuration.
type Config struct {
	// Audio
	SampleRate float64
	BlockSize  int

	// Control
	ControlInterval time.Duration
	Debounce        time.Duration
	Surface         string // keys, midi or idle
	MIDIPort        string // substring of the MIDI input port name

	// Test input
	ToneHz float64
	Shape  string // sine, burst or noise
	Seed   uint64

	LogLevel      string
	RenderSeconds float64 // > 0 selects offline rendering
	Window        string  // analysis window of the offline meter
	PatchFile     string  // JSON patch replacing the default graph
}

// Load parses args (without the program name). Flags override the
// environment; the environment overrides defaults.
func Load(args []string) (Config, error) {
	cfg := Config{}
	fs := flag.NewFlagSet("chaosdelay", flag.ContinueOnError)

	fs.Float64Var(&cfg.SampleRate, "rate", envFloat("CHAOS_SAMPLE_RATE", 44100), "sample rate in Hz")
	fs.IntVar(&cfg.BlockSize, "block", envInt("CHAOS_BLOCK_SIZE", 128), "audio block size in samples")
	fs.DurationVar(&cfg.ControlInterval, "control", envDuration("CHAOS_CONTROL_INTERVAL", 10*time.Millisecond), "control loop interval")
	fs.DurationVar(&cfg.Debounce, "debounce", envDuration("CHAOS_DEBOUNCE", 50*time.Millisecond), "button debounce interval")
	fs.StringVar(&cfg.Surface, "surface", envStr("CHAOS_SURFACE", SurfaceKeys), "control surface: keys, midi or idle")
	fs.StringVar(&cfg.MIDIPort, "midi-port", envStr("CHAOS_MIDI_PORT", ""), "MIDI input port name substring (first port when empty)")
	fs.Float64Var(&cfg.ToneHz, "tone", envFloat("CHAOS_TONE_HZ", 220), "test input frequency in Hz")
	fs.StringVar(&cfg.Shape, "shape", envStr("CHAOS_SHAPE", "burst"), "test input shape: sine, burst or noise")
	fs.Uint64Var(&cfg.Seed, "seed", envUint64("CHAOS_SEED", 0x6d1e), "noise seed")
	fs.StringVar(&cfg.LogLevel, "log", envStr("CHAOS_LOG_LEVEL", "info"), "log level: error, warn, info, debug, trace")
	fs.Float64Var(&cfg.RenderSeconds, "render", envFloat("CHAOS_RENDER_SECONDS", 0), "render N seconds offline and print analysis")
	fs.StringVar(&cfg.Window, "window", envStr("CHAOS_WINDOW", "hann"), "analysis window: hann, hamming, blackman or rectangular")
	fs.StringVar(&cfg.PatchFile, "patch", envStr("CHAOS_PATCH", ""), "JSON patch file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("config: unexpected arguments: %v", fs.Args())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and names.
func (c Config) Validate() error {
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		return fmt.Errorf("config: sample rate must be in [8000, 192000]: %g", c.SampleRate)
	}
	if c.BlockSize < 16 || c.BlockSize > 4096 {
		return fmt.Errorf("config: block size must be in [16, 4096]: %d", c.BlockSize)
	}
	if c.ControlInterval <= 0 {
		return fmt.Errorf("config: control interval must be > 0: %s", c.ControlInterval)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("config: debounce must be >= 0: %s", c.Debounce)
	}
	switch c.Surface {
	case SurfaceKeys, SurfaceMIDI, SurfaceIdle:
	default:
		return fmt.Errorf("config: unknown surface: %q", c.Surface)
	}
	if c.ToneHz <= 0 || c.ToneHz >= c.SampleRate/2 {
		return fmt.Errorf("config: tone must be in (0, %g): %g", c.SampleRate/2, c.ToneHz)
	}
	if _, err := signal.ParseShape(c.Shape); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := logx.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := window.ParseType(c.Window); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.RenderSeconds < 0 {
		return fmt.Errorf("config: render seconds must be >= 0: %g", c.RenderSeconds)
	}
	return nil
}

// AnalysisWindow returns the parsed Window. It is hann for a config that
// did not pass Validate.
func (c Config) AnalysisWindow() window.Type {
	t, err := window.ParseType(c.Window)
	if err != nil {
		return window.TypeHann
	}
	return t
}

// Offline reports whether the configuration selects offline rendering.
func (c Config) Offline() bool { return c.RenderSeconds > 0 }

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envUint64(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 0, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

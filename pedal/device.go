package pedal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pion/logging"

	"github.com/cwbudde/algo-chaosdelay/dsp/core"
	"github.com/cwbudde/algo-chaosdelay/internal/logx"
	"github.com/cwbudde/algo-chaosdelay/pedal/control"
	"github.com/cwbudde/algo-chaosdelay/pedal/display"
	"github.com/cwbudde/algo-chaosdelay/pedal/engine"
	"github.com/cwbudde/algo-chaosdelay/pedal/ladder"
	"github.com/cwbudde/algo-chaosdelay/pedal/mixer"
	"github.com/cwbudde/algo-chaosdelay/pedal/params"
	"github.com/cwbudde/algo-chaosdelay/pedal/patch"
	"github.com/cwbudde/algo-chaosdelay/pedal/telemetry"
)

// ErrNoSurface is returned by New without a control surface.
var ErrNoSurface = errors.New("pedal: control surface is required")

// Config holds the device construction settings.
type Config struct {
	SampleRate        float64
	BlockSize         int
	Debounce          time.Duration
	Seed              uint64
	TelemetryCapacity int
	// Patch replaces the default engine patch when non-nil.
	Patch *patch.Graph
}

// DefaultConfig returns the settings of the reference unit.
func DefaultConfig() Config {
	return Config{
		SampleRate:        core.DefaultSampleRate,
		BlockSize:         core.DefaultBlockSize,
		Debounce:          control.DefaultDebounce,
		Seed:              0x6d1e,
		TelemetryCapacity: 64,
	}
}

// Option configures a Device.
type Option func(*options) error

type options struct {
	loggers logging.LoggerFactory
	startup control.Startup
}

// WithLoggerFactory sets the factory for the device and telemetry loggers.
func WithLoggerFactory(f logging.LoggerFactory) Option {
	return func(o *options) error {
		if f == nil {
			return fmt.Errorf("pedal logger factory must not be nil")
		}
		o.loggers = f
		return nil
	}
}

// WithStartup replaces the power-on tone and delay settings.
func WithStartup(s control.Startup) Option {
	return func(o *options) error {
		o.startup = s
		return nil
	}
}

// Stats aggregates the device counters.
type Stats struct {
	Engine           engine.Stats
	Mixer            mixer.Stats
	Iterations       uint64
	TelemetryDropped uint64
}

// Device is one chaos delay unit.
type Device struct {
	cfg       Config
	params    *params.Params
	display   *display.Display
	ladder    *ladder.Ladder
	engine    *engine.Engine
	mixer     *mixer.Mixer
	mapper    *control.Mapper
	telemetry *telemetry.Sink
	log       logging.LeveledLogger
}

// New builds a device reading controls from surface.
func New(cfg Config, surface control.Surface, opts ...Option) (*Device, error) {
	if surface == nil {
		return nil, ErrNoSurface
	}
	o := options{startup: control.DefaultStartup()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	if o.loggers == nil {
		o.loggers = logx.Discard()
	}

	proc := core.ApplyProcessorOptions(core.WithSampleRate(cfg.SampleRate), core.WithBlockSize(cfg.BlockSize))
	if err := proc.Validate(); err != nil {
		return nil, fmt.Errorf("pedal: %w", err)
	}
	cfg.SampleRate, cfg.BlockSize = proc.SampleRate, proc.BlockSize

	d := &Device{
		cfg:     cfg,
		params:  params.New(),
		display: display.New(),
		log:     o.loggers.NewLogger("device"),
	}
	d.ladder = ladder.New(d.params, d.display)

	engineOpts := []engine.Option{
		engine.WithProcessorOptions(core.WithSampleRate(proc.SampleRate), core.WithBlockSize(proc.BlockSize)),
	}
	if cfg.Patch != nil {
		engineOpts = append(engineOpts, engine.WithPatch(*cfg.Patch))
	}
	eng, err := engine.New(engineOpts...)
	if err != nil {
		return nil, err
	}
	d.engine = eng

	mix, err := mixer.New(d.params, eng, eng, mixer.WithBlockSize(proc.BlockSize), mixer.WithSeed(cfg.Seed))
	if err != nil {
		return nil, err
	}
	d.mixer = mix

	d.telemetry = telemetry.New(cfg.TelemetryCapacity, o.loggers.NewLogger("telemetry"))

	mapper, err := control.NewMapper(surface, d.params, d.ladder, eng,
		control.WithDebounce(cfg.Debounce),
		control.WithTelemetry(d.telemetry),
		control.WithPeakMeter(mix),
	)
	if err != nil {
		return nil, err
	}
	d.mapper = mapper

	if err := control.Setup(eng, eng, d.params, o.startup); err != nil {
		return nil, err
	}

	d.log.Infof("device ready: %.0f Hz, %d-sample blocks, delay %d ms",
		proc.SampleRate, proc.BlockSize, d.params.DelayMs())
	return d, nil
}

// Config returns the effective configuration.
func (d *Device) Config() Config { return d.cfg }

// Process runs one audio block: in feeds the signal path and the limited
// stereo result is written to outL and outR. All three slices must be
// BlockSize long.
func (d *Device) Process(in, outL, outR []float64) {
	d.engine.Process(in)
	d.mixer.Process()
	d.engine.Render(outL, outR)
}

// UpdateControl runs one control iteration sampled at now.
func (d *Device) UpdateControl(now time.Time) control.Snapshot {
	return d.mapper.Update(now)
}

// RunControl runs the control loop until ctx is done.
func (d *Device) RunControl(ctx context.Context, interval time.Duration) error {
	d.log.Debugf("control loop every %s", interval)
	err := d.mapper.Run(ctx, interval)
	if errors.Is(err, context.Canceled) {
		d.log.Debugf("control loop stopped")
	}
	return err
}

// Telemetry returns the snapshot sink to drain.
func (d *Device) Telemetry() *telemetry.Sink { return d.telemetry }

// Display returns the LED display.
func (d *Device) Display() *display.Display { return d.display }

// Params returns the shared parameter store.
func (d *Device) Params() *params.Params { return d.params }

// Level returns the current chaos level.
func (d *Device) Level() int { return d.ladder.Level() }

// Stats returns the device counters.
func (d *Device) Stats() Stats {
	return Stats{
		Engine:           d.engine.Stats(),
		Mixer:            d.mixer.Stats(),
		Iterations:       d.mapper.Iterations(),
		TelemetryDropped: d.telemetry.Dropped(),
	}
}

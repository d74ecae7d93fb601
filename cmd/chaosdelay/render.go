package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/pion/logging"

	"github.com/cwbudde/algo-chaosdelay/dsp/analysis"
	"github.com/cwbudde/algo-chaosdelay/dsp/core"
	"github.com/cwbudde/algo-chaosdelay/internal/config"
	"github.com/cwbudde/algo-chaosdelay/internal/surface"
	"github.com/cwbudde/algo-chaosdelay/pedal"
)

// render processes cfg.RenderSeconds of the test tone with an idle surface
// and writes one analysis row per second of output.
func render(w io.Writer, cfg config.Config, loggers logging.LoggerFactory) error {
	dc, err := deviceConfig(cfg)
	if err != nil {
		return err
	}
	dev, err := pedal.New(dc, surface.Idle(), pedal.WithLoggerFactory(loggers))
	if err != nil {
		return err
	}
	osc, err := testTone(cfg)
	if err != nil {
		return err
	}
	meterL, err := analysis.NewMeter(cfg.SampleRate, analysis.WithWindow(cfg.AnalysisWindow()))
	if err != nil {
		return err
	}
	meterR, err := analysis.NewMeter(cfg.SampleRate, analysis.WithWindow(cfg.AnalysisWindow()))
	if err != nil {
		return err
	}

	in := make([]float64, cfg.BlockSize)
	outL := make([]float64, cfg.BlockSize)
	outR := make([]float64, cfg.BlockSize)

	blockDur := time.Duration(float64(cfg.BlockSize) / cfg.SampleRate * float64(time.Second))
	total := int(cfg.RenderSeconds * cfg.SampleRate)
	perRow := int(cfg.SampleRate)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "t [s]\tpeak L [dBFS]\tpeak R [dBFS]\trms L\trms R\tcentroid L [Hz]\tcentroid R [Hz]\t")

	var clock, nextControl time.Duration
	rowSamples := 0
	row := 0
	for done := 0; done < total; done += cfg.BlockSize {
		if clock >= nextControl {
			dev.UpdateControl(time.Unix(0, 0).Add(clock))
			nextControl += cfg.ControlInterval
		}
		osc.Fill(in)
		dev.Process(in, outL, outR)
		meterL.Add(outL)
		meterR.Add(outR)
		clock += blockDur
		rowSamples += cfg.BlockSize

		if rowSamples >= perRow || done+cfg.BlockSize >= total {
			row++
			if err := writeRow(tw, float64(done+cfg.BlockSize)/cfg.SampleRate, meterL, meterR); err != nil {
				return err
			}
			meterL.Reset()
			meterR.Reset()
			rowSamples = 0
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	st := dev.Stats()
	fmt.Fprintf(w, "\n%d blocks, %d rows, %d overruns, %d skipped L, %d skipped R\n",
		st.Engine.Periods, row, st.Engine.Overruns, st.Mixer.Skipped[0], st.Mixer.Skipped[1])
	return nil
}

func writeRow(w io.Writer, t float64, l, r *analysis.Meter) error {
	rl, err := l.Report()
	if err != nil {
		return err
	}
	rr, err := r.Report()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%.2f\t%.1f\t%.1f\t%.4f\t%.4f\t%.0f\t%.0f\t\n",
		t, core.LinearToDB(rl.Peak), core.LinearToDB(rr.Peak), rl.RMS, rr.RMS, rl.CentroidHz, rr.CentroidHz)
	return err
}

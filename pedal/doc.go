// Package pedal assembles the chaos delay device: shared parameters, chaos
// ladder, LED display, audio engine, block mixer, control mapper and
// telemetry sink.
//
// Two contexts drive a Device. The audio callback calls Process once per
// block; the control loop calls RunControl (or UpdateControl) at a fixed
// interval. They share only the atomic parameter store.
package pedal

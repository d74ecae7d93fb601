// Package buffer provides the fixed-length sample block used as the unit of
// real-time processing, and a pool that recycles blocks between periods.
// All DSP functions accept raw []float64 slices; Buffer is the carrier the
// block engine hands between stages.
package buffer

// Package svf provides a topology-preserving-transform state-variable
// filter (Zavalishin) with simultaneous low-pass, band-pass and high-pass
// outputs.
//
// The filter is linear, stable for every cutoff below Nyquist and every
// resonance in range, and cheap to retune per block.
package svf

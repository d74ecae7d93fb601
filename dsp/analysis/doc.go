// Package analysis measures rendered output: running peak and RMS level,
// and the spectral centroid of the most recent frame.
package analysis

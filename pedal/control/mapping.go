package control

import (
	"github.com/cwbudde/algo-chaosdelay/dsp/core"
	"github.com/cwbudde/algo-chaosdelay/pedal/params"
)

// RawMax is the full-scale reading of the 10-bit pot converter.
const RawMax = 1023

// feedbackPercentMax keeps the mapped loop gain at 0.95 and below.
const feedbackPercentMax = 95

func mapRaw(raw, outMin, outMax int) int {
	return core.MapRange(core.ClampInt(raw, 0, RawMax), 0, RawMax, outMin, outMax)
}

// MapDelay maps a raw reading to a delay time in ms, [1, 300].
func MapDelay(raw int) int {
	return mapRaw(raw, params.MinDelayMs, params.MaxDelayMs)
}

// MapFeedback maps a raw reading to a loop gain in [0, 0.95].
func MapFeedback(raw int) float64 {
	return float64(mapRaw(raw, 0, feedbackPercentMax)) / 100
}

// MapNoise maps a raw reading to a noise amount in [0, 60].
func MapNoise(raw int) int {
	return mapRaw(raw, params.MinNoise, params.MaxNoise)
}

// MapDensity maps a raw reading to a density in percent, [0, 100].
func MapDensity(raw int) int {
	return mapRaw(raw, params.MinDensity, params.MaxDensity)
}

// MapMix maps a raw reading to a mix amount in [0, 1].
func MapMix(raw int) float64 {
	return float64(mapRaw(raw, 0, 100)) / 100
}

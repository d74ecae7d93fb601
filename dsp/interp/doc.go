// Package interp provides the fractional interpolation primitives used by
// the modulated delay taps.
//
//   - [Linear2]:  2-point linear interpolation
//   - [Hermite4]: 4-point cubic Hermite (default)
package interp

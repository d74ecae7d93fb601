// Package control maps the physical control surface onto the shared
// parameters once per control-loop iteration.
//
// Buttons pass through a timestamp edge gate (never a sleep), pots are
// rescaled from the 10-bit converter range with integer map semantics, and
// the delay network receives its clamped settings every iteration. Pot
// values are written after button handling, so a pot always has the last
// word over a ladder preset.
package control

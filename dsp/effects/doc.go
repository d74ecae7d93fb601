// Package effects provides the per-sample kernels of the chaos delay signal
// path.
//
//   - Degrade / Degrader: probabilistic bit-depth reduction plus scaled
//     noise and hard clipping.
//   - TapDelay: multi-tap delay line with smoothed tap times and no
//     internal feedback.
//   - Limiter: attack/hold/release peak limiter. Build with -tags fastmath
//     to use approximated log/exp in the gain computer.
//
// All kernels are allocation free once constructed.
package effects

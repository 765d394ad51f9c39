// Package dynamics provides a look-ahead, feed-forward dynamic-range
// compressor for real-time block processing.
//
// The centerpiece is LookaheadCompressor: a broadcast/mastering style
// compressor that computes a smooth, adaptive gain-reduction envelope from
// the undelayed input and applies it to a delayed copy of the signal.
// It combines:
//   - a soft-knee static curve with an exponential knee, first-derivative
//     matched at the threshold, and a fitted steepness constant;
//   - a power-of-two look-ahead delay line;
//   - a shaped-peak detector with adaptive release;
//   - asymmetric attack/release gain integration with a sine warp;
//   - a display-only gain-reduction meter.
//
// Processing is single-threaded, allocation-free and lock-free after
// construction. Parameter setters publish through wait-free smoothed
// values and may be called from a control thread while audio is running.
//
// Build with the fastmath tag to use polynomial approximations for the
// per-sample dB conversions.
package dynamics

// Package control implements the closed-loop air-brakes controller that
// targets a configured apogee.
//
// A [Loop] is driven by the flight-dynamics engine once per control tick.
// Each tick it low-pass filters the raw altitude and velocity estimates,
// asks its [Strategy] for a raw deployment command, and enforces the
// actuator limits (deployment clamp and rate limit) before committing the
// command to its [State].
//
// Strategies form a closed set selected by [Config.Kind]:
//
//   - [PID]: proportional-integral-derivative on predicted-apogee error
//   - [BangBang]: full deployment above a hysteresis band, retracted below
//   - [MPC]: receding-horizon search for the deployment that lands the
//     predicted apogee on target
//
// A Loop owns its State exclusively. It must be freshly constructed, or
// Reset, before every independent flight; reuse without Reset leaks filter
// and error state between flights.
package control

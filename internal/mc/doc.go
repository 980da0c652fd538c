// Package mc is the Monte Carlo and sensitivity-analysis engine.
//
// A [Plan] samples declared parameter variations into a Saltelli pick-freeze
// design, the [Driver] fans the plan's trials out over a bounded worker pool
// (each trial building its own controller and engine), and the [Analyzer]
// computes variance-based first-order and total-order Sobol indices with
// bootstrap confidence bounds from the collected records.
//
// Reproducibility contract: for a fixed seed, the plan, every trial's noise
// stream, and therefore the index-ordered record set are identical
// regardless of worker count or completion order.
package mc

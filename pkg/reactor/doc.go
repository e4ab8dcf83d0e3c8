// Package reactor implements the dataflow engine that drives a set of
// Rules to a fixed point over a store of Attributes: the attribute store,
// the rule-dependency index and ready-queue, the evaluation loop with
// error propagation, and the missing-attribute diagnostic pass.
//
// The engine is single-threaded and cooperative: at most one rule
// computation runs at a time, and Run owns all engine state for its
// duration. Rule computations may register further rules mid-run
// (re-entrant registration), but must not call back into a Reactor from
// another goroutine.
package reactor

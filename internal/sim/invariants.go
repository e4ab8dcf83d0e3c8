package sim

import (
	"fmt"

	"github.com/attrflow/reactor/pkg/reactor"
)

// maxCauseChainDepth bounds the walk AcyclicCauseChains performs; a real
// cause chain is only ever as deep as the longest dependency path in a
// program, so hitting this is itself evidence of a cycle.
const maxCauseChainDepth = 100000

// Harness is the post-Run state an Invariant inspects.
type Harness struct {
	R *reactor.Reactor
}

// Invariant is a property that must hold of every completed run.
type Invariant func(*Harness) (bool, string)

// NamedInvariant pairs an invariant with a label used in violation
// reports.
type NamedInvariant struct {
	Name  string
	Check Invariant
}

// Violation records a single invariant failure, tagged with the seed
// that produced it so the run can be reproduced.
type Violation struct {
	Name    string
	Message string
	Seed    int64
}

// InvariantChecker runs a set of named invariants against a Harness and
// accumulates violations across many runs.
type InvariantChecker struct {
	invariants []NamedInvariant
	violations []Violation
}

// NewInvariantChecker builds a checker with the default properties every
// reactor run must satisfy regardless of the program that produced it.
func NewInvariantChecker() *InvariantChecker {
	ic := &InvariantChecker{}
	ic.Register("no_nil_stored_values", NoNilStoredValues)
	ic.Register("acyclic_cause_chains", AcyclicCauseChains)
	ic.Register("root_errors_subset_of_all", RootErrorsSubsetOfAll)
	return ic
}

// Register adds a named invariant to the set this checker runs.
func (ic *InvariantChecker) Register(name string, inv Invariant) {
	ic.invariants = append(ic.invariants, NamedInvariant{Name: name, Check: inv})
}

// CheckAll runs every registered invariant against h, recording a
// Violation tagged with seed for each one that fails, and reports
// whether they all passed.
func (ic *InvariantChecker) CheckAll(h *Harness, seed int64) bool {
	allPass := true
	for _, named := range ic.invariants {
		if pass, msg := named.Check(h); !pass {
			allPass = false
			ic.violations = append(ic.violations, Violation{Name: named.Name, Message: msg, Seed: seed})
		}
	}
	return allPass
}

// Violations returns every violation recorded across all CheckAll calls.
func (ic *InvariantChecker) Violations() []Violation {
	return ic.violations
}

// -------------------------------------------------------------------
// Default invariants
// -------------------------------------------------------------------

// NoNilStoredValues: Set/Rule contracts forbid a nil attribute value;
// this re-checks that guarantee held for every attribute a completed run
// produced.
func NoNilStoredValues(h *Harness) (bool, string) {
	for _, attr := range h.R.Attributes() {
		v, ok := h.R.Get(attr)
		if !ok || v == nil {
			return false, fmt.Sprintf("attribute %s has no stored value", attr)
		}
	}
	return true, ""
}

// AcyclicCauseChains: every error's Cause() chain terminates at a root
// within a bounded number of steps.
func AcyclicCauseChains(h *Harness) (bool, string) {
	for _, err := range h.R.AllErrors() {
		depth := 0
		cur := err
		for !cur.IsRoot() {
			cur = cur.Cause()
			depth++
			if depth > maxCauseChainDepth {
				return false, fmt.Sprintf("cause chain for %q exceeded %d links, likely cyclic", err.Description(), maxCauseChainDepth)
			}
		}
	}
	return true, ""
}

// RootErrorsSubsetOfAll: every error Errors() returns also appears in
// AllErrors().
func RootErrorsSubsetOfAll(h *Harness) (bool, string) {
	allErrs := h.R.AllErrors()
	for _, root := range h.R.Errors() {
		found := false
		for _, e := range allErrs {
			if e == root {
				found = true
				break
			}
		}
		if !found {
			return false, fmt.Sprintf("root error %q missing from AllErrors()", root.Description())
		}
	}
	return true, ""
}

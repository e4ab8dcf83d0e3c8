package reactor

import (
	"fmt"

	"github.com/attrflow/reactor/pkg/attribute"
	"github.com/attrflow/reactor/pkg/semerr"
)

// Rule is a reusable computation unit: a fixed schema of export and
// dependency Attributes, plus the runtime state tracking which
// dependencies have arrived and which exports have been produced.
//
// A Rule is built through Reactor.Rule(...).Using(...).By(...); its
// computation runs the first time every dependency slot has received a
// value. Under the default redefinition policy that is the only time it
// runs; a RedefinitionPolicy calling SupplyToDependents can re-arm it.
type Rule struct {
	id  int
	ref *Reactor

	exports          []attribute.Attribute
	dependencies     []attribute.Attribute
	exportValues     []any
	dependencyValues []any

	unsatisfied int
	compute     func(*Rule)

	enqueued bool
	fired    bool
}

// String returns a short diagnostic label, e.g. "rule#3".
func (rl *Rule) String() string {
	return fmt.Sprintf("rule#%d", rl.id)
}

// Exports returns the rule's declared export attributes.
func (rl *Rule) Exports() []attribute.Attribute {
	return rl.exports
}

// Dependencies returns the rule's declared dependency attributes.
func (rl *Rule) Dependencies() []attribute.Attribute {
	return rl.dependencies
}

// Fired reports whether this rule's computation has run.
func (rl *Rule) Fired() bool {
	return rl.fired
}

// Get returns the value of the dependency at the given index. Called from
// within the rule's own computation; a well-behaved rule only sees
// non-nil values here, since Get is only meaningful once the rule is
// ready (all dependency slots filled).
func (rl *Rule) Get(index int) any {
	return rl.dependencyValues[index]
}

// GetAttribute returns the value of the first dependency slot matching
// attr. Prefer Get(index) when a rule has duplicate dependency attributes
// and needs to distinguish slots.
func (rl *Rule) GetAttribute(attr attribute.Attribute) any {
	for i, dep := range rl.dependencies {
		if dep == attr {
			return rl.dependencyValues[i]
		}
	}
	return nil
}

// Set writes a value for the export at the given index. value must be
// non-nil. Multiple calls for the same index overwrite; only the value
// present when the computation returns is published.
func (rl *Rule) Set(index int, value any) {
	if value == nil {
		rl.ref.fatalf("%s: Set(%d, nil) rejected, export values must be non-nil", rl, index)
	}
	rl.exportValues[index] = value
}

// SetAttribute writes value to every export slot matching attr. attr must
// be one of the rule's declared exports.
func (rl *Rule) SetAttribute(attr attribute.Attribute, value any) {
	if value == nil {
		rl.ref.fatalf("%s: SetAttribute(%s, nil) rejected, export values must be non-nil", rl, attr)
	}
	found := false
	for i, exp := range rl.exports {
		if exp == attr {
			rl.exportValues[i] = value
			found = true
		}
	}
	if !found {
		rl.ref.fatalf("%s: SetAttribute(%s, ...) called on a non-export attribute", rl, attr)
	}
}

// CopyFirst is a ready-made computation that copies the value of
// dependency 0 to export 0 — the common one-in-one-out transfer rule.
// Pass it directly as a By(...) computation: reactor.Rule(b).Using(a).By(reactor.CopyFirst).
func CopyFirst(rl *Rule) {
	rl.Set(0, rl.Get(0))
}

// Error signals a root SemanticError that precludes all of this rule's
// exports. If the rule has no exports, the error is reported to the
// Reactor directly (it has nowhere else to attach).
func (rl *Rule) Error(description string, location any) {
	rl.ErrorValue(semerr.New(description, location))
}

// ErrorValue is like Error but takes an already-built SemanticError,
// letting a rule propagate a caused error rather than only ever
// originating root errors.
func (rl *Rule) ErrorValue(err *semerr.SemanticError) {
	if len(rl.exports) == 0 {
		rl.ref.reportError(err, nil)
		return
	}
	for i := range rl.exportValues {
		rl.exportValues[i] = err
	}
}

// ErrorFor marks each attribute in affected as failed with err. affected
// need not be this rule's exports: for attributes that are exports, the
// corresponding export_values entries are set to err; for attributes that
// are not, the error is routed directly to the Reactor so that rules
// depending on those (possibly not-yet-registered) attributes are
// pre-failed.
func (rl *Rule) ErrorFor(err *semerr.SemanticError, affected ...attribute.Attribute) {
	for _, a := range affected {
		matched := false
		for i, exp := range rl.exports {
			if exp == a {
				rl.exportValues[i] = err
				matched = true
			}
		}
		if !matched {
			a := a
			rl.ref.reportError(err, &a)
		}
	}
}

// ErrorForNew is ErrorFor built from a fresh root SemanticError.
func (rl *Rule) ErrorForNew(description string, location any, affected ...attribute.Attribute) {
	rl.ErrorFor(semerr.New(description, location), affected...)
}

// supply fills the first still-empty dependency slot matching dep and, if
// that was the rule's last unsatisfied dependency, enqueues it on the
// Reactor. Called by the Reactor only; a rule with a duplicate dependency
// attribute must be supplied once per occurrence to fill every slot.
func (rl *Rule) supply(dep attribute.Attribute, value any) {
	for i, d := range rl.dependencies {
		if d == dep && rl.dependencyValues[i] == nil {
			rl.dependencyValues[i] = value
			rl.unsatisfied--
			if rl.unsatisfied == 0 {
				rl.ref.enqueue(rl)
			}
			return
		}
	}
}

// forceSupply overwrites every slot matching dep regardless of prior
// content, re-arming the rule to fire again if it had already produced
// its exports once every slot is filled. Used only by a RedefinitionOps'
// SupplyToDependents, the incremental-mode path; ordinary first-time
// propagation always goes through supply instead.
func (rl *Rule) forceSupply(dep attribute.Attribute, value any) {
	matched := false
	for i, d := range rl.dependencies {
		if d != dep {
			continue
		}
		matched = true
		if rl.dependencyValues[i] == nil {
			rl.unsatisfied--
		}
		rl.dependencyValues[i] = value
	}
	if !matched || rl.unsatisfied > 0 {
		return
	}
	if rl.fired {
		rl.fired = false
		rl.enqueued = false
		for i := range rl.exportValues {
			rl.exportValues[i] = nil
		}
	}
	rl.ref.enqueue(rl)
}

package reactor

import (
	"fmt"

	"github.com/attrflow/reactor/pkg/attribute"
	"github.com/attrflow/reactor/pkg/semerr"
)

// defaultMaxRedefinitionDepth guards against an unbounded recursive loop
// in a user-supplied RedefinitionPolicy that keeps calling back into
// itself through Redefine/SupplyToDependents. The default policy never
// recurses, making this unreachable. Override with WithMaxRedefinitionDepth.
const defaultMaxRedefinitionDepth = 10000

// FatalError is a contract violation the Reactor cannot recover from: a
// rule that didn't supply an export, a redefinition under the default
// policy, a nil value passed to Set, or an external Set call during Run.
// Run returns a *FatalError and stops evaluation immediately when one
// occurs; root and derived SemanticErrors never produce one.
type FatalError struct {
	msg string
}

func (e *FatalError) Error() string { return e.msg }

// fatalAbort is the internal panic value used to unwind straight to Run
// from anywhere in the call stack (rule computations, the redefinition
// hook, nested registrations) without threading an error return through
// every recursive call the algorithm makes.
type fatalAbort struct{ err *FatalError }

// RedefinitionOps is the privileged capability handed to a
// RedefinitionPolicy: the only way to call the two extension operations
// spec'd for incremental/multi-producer modes. It is only valid for the
// duration of the policy call it was passed to.
type RedefinitionOps struct {
	r    *Reactor
	attr attribute.Attribute
}

// Redefine stores value as attr's new value, overwriting the prior one.
func (o RedefinitionOps) Redefine(value any) {
	o.r.redefine(o.attr, value)
}

// SupplyToDependents force-feeds value to every rule depending on attr,
// overwriting whatever each matching slot already held and, for a rule
// that had already fired, re-arming it to run again once every slot is
// filled — the mechanic an incremental RedefinitionPolicy rides to push
// a changed value through rules that already produced their exports
// once.
func (o RedefinitionOps) SupplyToDependents(value any) {
	o.r.redefineDependents(o.attr, value)
}

// RedefinitionPolicy decides what happens when a rule (or eager Set)
// tries to publish a second, non-error value for an attribute that
// already holds one. old and new are the existing and incoming values.
// The default policy (DefaultRedefinitionPolicy) fails fast.
type RedefinitionPolicy func(ops RedefinitionOps, old, new any)

// DefaultRedefinitionPolicy forbids redefinition: two rules (or a rule
// and an eager Set) producing the same attribute is a specification bug,
// and the Reactor fails fast rather than silently picking a value.
func DefaultRedefinitionPolicy(ops RedefinitionOps, old, new any) {
	ops.r.fatalf("attribute %s redefined: old=%#v new=%#v", ops.attr, old, new)
}

// Reactor is the dataflow engine: the attribute store, the rule
// dependency index and ready-queue, and the evaluation loop. A zero
// Reactor is not usable; construct one with New.
type Reactor struct {
	id string

	attributes   map[attribute.Attribute]any
	dependencies map[attribute.Attribute][]*Rule
	noDeps       []*Rule
	allRules     []*Rule
	ruleSeq      int

	queue []*Rule

	rootErrors           []*semerr.SemanticError
	attributelessDerived []*semerr.SemanticError

	running              bool
	redefinitionPolicy   RedefinitionPolicy
	redefinitionDepth    int
	maxRedefinitionDepth int

	observer Observer
}

// Option configures a Reactor at construction time.
type Option func(*Reactor)

// WithRedefinitionPolicy overrides the default fail-fast redefinition
// policy, enabling an incremental/multi-producer evaluation mode.
func WithRedefinitionPolicy(policy RedefinitionPolicy) Option {
	return func(r *Reactor) { r.redefinitionPolicy = policy }
}

// WithObserver attaches an Observer that is notified of run lifecycle,
// rule firings and reported errors — the hook internal/obs uses to wire
// tracing, metrics and logging without pkg/reactor depending on them.
func WithObserver(o Observer) Option {
	return func(r *Reactor) { r.observer = o }
}

// WithID tags this Reactor with a caller-supplied identifier (e.g. a
// UUID) surfaced to its Observer and in String(); purely cosmetic, it
// plays no part in attribute or rule identity.
func WithID(id string) Option {
	return func(r *Reactor) { r.id = id }
}

// WithMaxRedefinitionDepth overrides defaultMaxRedefinitionDepth, the
// recursion guard on a RedefinitionPolicy that keeps calling back into
// Redefine/SupplyToDependents.
func WithMaxRedefinitionDepth(depth int) Option {
	return func(r *Reactor) { r.maxRedefinitionDepth = depth }
}

// New constructs an empty, unstarted Reactor.
func New(opts ...Option) *Reactor {
	r := &Reactor{
		attributes:           make(map[attribute.Attribute]any),
		dependencies:         make(map[attribute.Attribute][]*Rule),
		redefinitionPolicy:   DefaultRedefinitionPolicy,
		observer:             noopObserver{},
		maxRedefinitionDepth: defaultMaxRedefinitionDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ID returns this Reactor's caller-supplied identifier, or "" if none was
// set via WithID.
func (r *Reactor) ID() string {
	return r.id
}

func (r *Reactor) String() string {
	if r.id != "" {
		return fmt.Sprintf("reactor[%s]", r.id)
	}
	return "reactor"
}

// Set stores an eagerly-known, non-nil value for attr. It may only be
// called before Run (or between Run calls); calling it while evaluation
// is in progress is a programming error.
func (r *Reactor) Set(attr attribute.Attribute, value any) {
	if r.running {
		r.fatalf("Set(%s, ...) called while the reactor is running", attr)
	}
	if value == nil {
		r.fatalf("Set(%s, nil) rejected, attribute values must be non-nil", attr)
	}
	r.attributes[attr] = value
}

// SetNode is Set for the (node, name) pair spelled out directly.
func (r *Reactor) SetNode(node attribute.Node, name string, value any) {
	r.Set(attribute.New(node, name), value)
}

// Error registers err without an associated rule. With no affected
// attributes, err is recorded as a root or attributeless-derived error
// depending on whether it has a cause. Otherwise each affected attribute
// is marked failed with err via the normal setValue pipeline.
func (r *Reactor) Error(err *semerr.SemanticError, affected ...attribute.Attribute) {
	if r.running {
		r.fatalf("Error(...) called while the reactor is running")
	}
	if len(affected) == 0 {
		r.reportError(err, nil)
		return
	}
	for _, a := range affected {
		a := a
		r.reportError(err, &a)
	}
}

// Rule starts building a new rule with the given export attributes.
func (r *Reactor) Rule(exports ...attribute.Attribute) *RuleBuilder {
	return &RuleBuilder{reactor: r, exports: exports}
}

// RuleBuilder is the fluent rule-registration surface:
// reactor.Rule(exports...).Using(deps...).By(computation).
type RuleBuilder struct {
	reactor      *Reactor
	exports      []attribute.Attribute
	dependencies []attribute.Attribute
}

// Using declares this rule's dependency attributes. Optional: a rule with
// no dependencies fires as soon as the queue is seeded.
func (b *RuleBuilder) Using(deps ...attribute.Attribute) *RuleBuilder {
	b.dependencies = deps
	return b
}

// By finalizes registration with the given computation and returns the
// constructed Rule.
func (b *RuleBuilder) By(compute func(*Rule)) *Rule {
	rule := &Rule{
		exports:          b.exports,
		dependencies:     b.dependencies,
		exportValues:     make([]any, len(b.exports)),
		dependencyValues: make([]any, len(b.dependencies)),
		unsatisfied:      len(b.dependencies),
		compute:          compute,
		ref:              b.reactor,
	}
	b.reactor.register(rule)
	return rule
}

// register attaches a newly-built rule to the dependency index (or the
// no-dependency bucket) and, if the reactor is already running,
// synchronously supplies it with any dependency values already present —
// this is what lets a rule registered mid-run by another rule's
// computation fire within the same Run.
func (r *Reactor) register(rule *Rule) {
	r.ruleSeq++
	rule.id = r.ruleSeq
	r.allRules = append(r.allRules, rule)

	if len(rule.dependencies) == 0 {
		r.noDeps = append(r.noDeps, rule)
		if r.running {
			r.enqueue(rule)
		}
		return
	}

	for _, dep := range rule.dependencies {
		r.dependencies[dep] = append(r.dependencies[dep], rule)
	}
	if r.running {
		for _, dep := range rule.dependencies {
			if v, ok := r.attributes[dep]; ok {
				rule.supply(dep, v)
			}
		}
	}
}

func (r *Reactor) enqueue(rule *Rule) {
	if rule.enqueued || rule.fired {
		return
	}
	rule.enqueued = true
	r.queue = append(r.queue, rule)
}

// Run drives the reactor to a fixed point: it seeds already-known values
// and zero-dependency rules, drains the ready-queue publishing each
// rule's exports (which may unblock further rules or become propagated
// errors), then runs the missing-attribute diagnostic. It returns a
// *FatalError on any contract violation; root and derived SemanticErrors
// are ordinary outcomes, not returned as an error.
func (r *Reactor) Run() (err error) {
	defer func() {
		r.running = false
		if rec := recover(); rec != nil {
			fa, ok := rec.(fatalAbort)
			if !ok {
				panic(rec)
			}
			err = fa.err
		}
		r.observer.RunFinished(r, err)
	}()

	r.running = true
	r.observer.RunStarted(r)

	for attr, value := range r.attributes {
		for _, rule := range r.dependencies[attr] {
			rule.supply(attr, value)
		}
	}
	for _, rule := range r.noDeps {
		r.enqueue(rule)
	}

	for len(r.queue) > 0 {
		rule := r.queue[0]
		r.queue = r.queue[1:]
		r.fire(rule)
	}

	r.runMissingAttributeDiagnostic()
	return nil
}

// fire invokes rule's computation and publishes its exports. A rule that
// returns without every export_values entry set is a contract violation
// (fatal); a panicking computation is likewise treated as fatal, since
// neither leaves every export in a defined state.
func (r *Reactor) fire(rule *Rule) {
	rule.fired = true
	r.callComputation(rule)
	r.observer.RuleFired(r, rule)

	published := make(map[attribute.Attribute]bool, len(rule.exports))
	for i, exp := range rule.exports {
		v := rule.exportValues[i]
		if v == nil {
			r.fatalf("%s: export %s was not set", rule, exp)
		}
		if published[exp] {
			continue // a rule with a duplicate export publishes it once
		}
		published[exp] = true
		r.setValue(exp, v)
	}
}

func (r *Reactor) callComputation(rule *Rule) {
	defer func() {
		if rec := recover(); rec != nil {
			if _, ok := rec.(fatalAbort); ok {
				panic(rec)
			}
			r.fatalf("%s: computation panicked: %v", rule, rec)
		}
	}()
	rule.compute(rule)
}

// setValue is the put-if-absent publication pipeline: a prior error value
// silently absorbs the new one, a prior non-error value triggers the
// redefinition policy, a new error value is recorded and propagated to
// dependents, and a new plain value is stored and forwarded to
// dependents.
func (r *Reactor) setValue(attr attribute.Attribute, value any) {
	old, exists := r.attributes[attr]
	if exists {
		if _, wasErr := old.(*semerr.SemanticError); wasErr {
			return // keep the first reported error, do not recurse
		}
		r.invokeRedefinitionPolicy(attr, old, value)
		return
	}

	if newErr, isErr := value.(*semerr.SemanticError); isErr {
		if newErr.IsRoot() {
			known := false
			for _, e := range r.rootErrors {
				if e == newErr {
					known = true
					break
				}
			}
			if !known {
				r.rootErrors = append(r.rootErrors, newErr)
			}
		}
		r.attributes[attr] = value
		r.observer.ErrorReported(r, newErr)
		r.propagateError(newErr, attr)
		return
	}

	r.attributes[attr] = value
	r.supplyToDependents(attr, value)
}

func (r *Reactor) invokeRedefinitionPolicy(attr attribute.Attribute, old, value any) {
	r.redefinitionDepth++
	if r.redefinitionDepth > r.maxRedefinitionDepth {
		r.fatalf("redefinition of %s recursed past %d levels, a RedefinitionPolicy is looping", attr, r.maxRedefinitionDepth)
	}
	defer func() { r.redefinitionDepth-- }()

	r.redefinitionPolicy(RedefinitionOps{r: r, attr: attr}, old, value)
}

func (r *Reactor) redefine(attr attribute.Attribute, value any) {
	r.attributes[attr] = value
}

func (r *Reactor) supplyToDependents(attr attribute.Attribute, value any) {
	for _, rule := range r.dependencies[attr] {
		rule.supply(attr, value)
	}
}

// redefineDependents is the incremental counterpart: each dependent rule
// is visited once (bucket occurrences collapse, unlike supplyToDependents
// which relies on repeat occurrences to fill duplicate-dependency slots
// one at a time) and force-fed the redefined value across every slot it
// fills.
func (r *Reactor) redefineDependents(attr attribute.Attribute, value any) {
	seen := make(map[*Rule]bool)
	for _, rule := range r.dependencies[attr] {
		if seen[rule] {
			continue
		}
		seen[rule] = true
		rule.forceSupply(attr, value)
	}
}

// propagateError taints every rule depending on affected: each of its
// exports gets a derived "missing dependency" error, which itself flows
// back through setValue and so cascades to their dependents in turn.
// Rules with no exports have nowhere to attach the derived error and are
// skipped — their dependency on affected is still visible through
// affected's own error value.
func (r *Reactor) propagateError(err *semerr.SemanticError, affected attribute.Attribute) {
	seen := make(map[*Rule]bool)
	for _, rule := range r.dependencies[affected] {
		if seen[rule] {
			continue
		}
		seen[rule] = true
		for _, exp := range rule.exports {
			exp := exp
			derived := semerr.Wrap("missing dependency "+affected.String(), err, nil)
			r.reportError(derived, &exp)
		}
	}
}

// reportError routes err to affected via setValue, or — when affected is
// nil, meaning the signaler had no attribute to attach it to — records it
// as a root error or, if derived, an attributeless-derived error so it is
// not silently lost.
func (r *Reactor) reportError(err *semerr.SemanticError, affected *attribute.Attribute) {
	if affected == nil {
		if err.IsRoot() {
			r.rootErrors = append(r.rootErrors, err)
		} else {
			r.attributelessDerived = append(r.attributelessDerived, err)
		}
		r.observer.ErrorReported(r, err)
		return
	}
	r.setValue(*affected, err)
}

func (r *Reactor) fatalf(format string, args ...any) {
	panic(fatalAbort{err: &FatalError{msg: fmt.Sprintf(format, args...)}})
}

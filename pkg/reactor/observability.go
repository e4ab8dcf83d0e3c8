package reactor

import "github.com/attrflow/reactor/pkg/semerr"

// Observer receives lifecycle notifications from a Reactor's Run. It
// exists so the evaluation algorithm in this package stays free of any
// tracing/metrics/logging dependency — internal/obs implements Observer
// against OpenTelemetry and Prometheus and is wired in via WithObserver,
// keeping the pure evaluation algorithm in this package separate from any
// instrumentation that watches it run.
type Observer interface {
	// RunStarted is called once, synchronously, at the top of Run.
	RunStarted(r *Reactor)
	// RunFinished is called once, synchronously, as Run returns; err is
	// the *FatalError Run is about to return, or nil.
	RunFinished(r *Reactor, err error)
	// RuleFired is called immediately after a rule's computation returns,
	// before its exports are published.
	RuleFired(r *Reactor, rule *Rule)
	// ErrorReported is called whenever a root or derived SemanticError is
	// recorded, whether attached to an attribute or attributeless.
	ErrorReported(r *Reactor, err *semerr.SemanticError)
}

type noopObserver struct{}

func (noopObserver) RunStarted(*Reactor)                           {}
func (noopObserver) RunFinished(*Reactor, error)                   {}
func (noopObserver) RuleFired(*Reactor, *Rule)                     {}
func (noopObserver) ErrorReported(*Reactor, *semerr.SemanticError) {}

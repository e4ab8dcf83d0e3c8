package obs

import (
	"context"
	"sync"
	"time"

	"github.com/attrflow/reactor/pkg/reactor"
	"github.com/attrflow/reactor/pkg/semerr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// event is a rule-firing or error-reporting notification queued for
// asynchronous span emission, so Observer callbacks never block the
// evaluation loop on exporter I/O.
type event struct {
	rule string
	err  *semerr.SemanticError
}

// TelemetryObserver implements reactor.Observer against OpenTelemetry
// tracing and Prometheus metrics: one span per Run, with rule firings
// and reported errors recorded as span events drained from a bounded
// buffer by a background goroutine, so a slow exporter never blocks
// the evaluation loop that's feeding it.
type TelemetryObserver struct {
	buffer chan event
	done   chan struct{}
	wg     sync.WaitGroup

	ctx       context.Context
	runSpan   trace.Span
	startedAt time.Time
}

var _ reactor.Observer = (*TelemetryObserver)(nil)

// NewTelemetryObserver creates an observer buffering up to bufferSize
// pending span events. Call Start before handing it to reactor.New via
// WithObserver, and Stop once the process is done using it.
func NewTelemetryObserver(bufferSize int) *TelemetryObserver {
	return &TelemetryObserver{
		buffer: make(chan event, bufferSize),
		done:   make(chan struct{}),
		ctx:    context.Background(),
	}
}

// Start launches the background drain goroutine.
func (o *TelemetryObserver) Start() {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for {
			select {
			case ev := <-o.buffer:
				o.emit(ev)
			case <-o.done:
				o.drain()
				return
			}
		}
	}()
}

// Stop signals the drain goroutine to flush remaining events and wait
// for it to exit.
func (o *TelemetryObserver) Stop() {
	close(o.done)
	o.wg.Wait()
}

func (o *TelemetryObserver) drain() {
	for {
		select {
		case ev := <-o.buffer:
			o.emit(ev)
		default:
			return
		}
	}
}

func (o *TelemetryObserver) emit(ev event) {
	if o.runSpan == nil {
		return
	}
	if ev.err != nil {
		o.runSpan.AddEvent("reactor.error_reported", trace.WithAttributes(
			attribute.String("error.description", ev.err.Description()),
			attribute.Bool("error.root", ev.err.IsRoot()),
		))
		return
	}
	o.runSpan.AddEvent("reactor.rule_fired", trace.WithAttributes(
		attribute.String("rule.id", ev.rule),
	))
}

// RunStarted implements reactor.Observer.
func (o *TelemetryObserver) RunStarted(r *reactor.Reactor) {
	o.startedAt = time.Now()
	ctx, span := Tracer.Start(context.Background(), "reactor.run",
		trace.WithAttributes(attribute.String("reactor.id", r.ID())),
	)
	o.ctx = ctx
	o.runSpan = span
	Debug(o.ctx, "run started id=%s", r.ID())
}

// RunFinished implements reactor.Observer.
func (o *TelemetryObserver) RunFinished(r *reactor.Reactor, err error) {
	duration := time.Since(o.startedAt)
	RunDuration.Observe(duration.Seconds())

	outcome := "ok"
	if err != nil {
		outcome = "fatal"
		o.runSpan.SetStatus(codes.Error, err.Error())
		o.runSpan.RecordError(err)
	}
	RunsTotal.WithLabelValues(outcome).Inc()

	Info(o.ctx, "run finished id=%s outcome=%s duration=%v", r.ID(), outcome, duration)
	o.runSpan.End()
}

// RuleFired implements reactor.Observer.
func (o *TelemetryObserver) RuleFired(r *reactor.Reactor, rule *reactor.Rule) {
	RulesFiredTotal.Inc()
	select {
	case o.buffer <- event{rule: rule.String()}:
	default:
		Warn(o.ctx, "telemetry buffer full, dropping rule_fired event for %s", rule)
	}
}

// ErrorReported implements reactor.Observer.
func (o *TelemetryObserver) ErrorReported(r *reactor.Reactor, err *semerr.SemanticError) {
	kind := "derived"
	if err.IsRoot() {
		kind = "root"
	}
	ErrorsReportedTotal.WithLabelValues(kind).Inc()
	select {
	case o.buffer <- event{err: err}:
	default:
		Warn(o.ctx, "telemetry buffer full, dropping error_reported event")
	}
}

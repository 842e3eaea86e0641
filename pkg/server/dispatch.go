package server

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/glint-ui/glint/pkg/protocol"
)

// Dispatcher routes inbound client events to registered callbacks.
//
// Each accepted event runs in its own goroutine, so a slow handler never
// blocks the session's read loop and independent events on one session run
// concurrently. The per-session in-flight cap bounds that concurrency; an
// event arriving with the cap exhausted is rejected, not queued.
type Dispatcher struct {
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// NewDispatcher creates a dispatcher. logger and metrics may be nil.
func NewDispatcher(logger *slog.Logger, metrics *Metrics) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer("glint/server"),
	}
}

// Dispatch accepts one inbound event for the session. It validates the
// callback id and refreshes the prop cache synchronously, then runs the
// handler on its own goroutine.
//
// The returned error covers acceptance only: ErrStaleCallback for an
// unknown id, ErrEventQueueFull when the in-flight cap is exhausted,
// ErrSessionClosed after disconnect. Handler failures never propagate
// here; they are logged and reported to the client as an error frame.
func (d *Dispatcher) Dispatch(s *Session, ev *protocol.EventMessage) error {
	if !s.IsLive() {
		return ErrSessionClosed
	}
	s.touch()
	s.eventCount.Add(1)
	if d.metrics != nil {
		d.metrics.EventsReceived.Inc()
	}

	// The prop cache refreshes even when the callback turns out stale:
	// captured input values are real regardless.
	s.cacheProps(ev.Props)

	cb, ok := s.callbacks.Lookup(ev.CallbackID)
	if !ok {
		// Stale ids are routine after navigation, not an attack.
		s.logger.Debug("stale callback", "callback_id", ev.CallbackID)
		if d.metrics != nil {
			d.metrics.StaleCallbacks.Inc()
		}
		s.channel.SendError(protocol.ErrCodeStaleCallback,
			fmt.Sprintf("unknown callback %q", ev.CallbackID))
		return ErrStaleCallback
	}

	select {
	case s.sem <- struct{}{}:
	default:
		s.logger.Warn("event rejected, in-flight cap reached",
			"callback_id", ev.CallbackID, "cap", s.config.MaxInFlight)
		s.channel.SendError(protocol.ErrCodeQueueFull, "too many events in flight")
		return ErrEventQueueFull
	}

	done := s.track()
	go func() {
		defer func() {
			<-s.sem
			done()
		}()
		d.run(s, cb, ev)
	}()
	return nil
}

// run executes one handler invocation end to end: tracing, timing, panic
// recovery, failure reporting.
func (d *Dispatcher) run(s *Session, cb *Callback, ev *protocol.EventMessage) {
	_, span := d.tracer.Start(s.Context(), "dispatch",
		trace.WithAttributes(
			attribute.String("session.id", s.ID),
			attribute.String("callback.id", cb.ID),
		))
	defer span.End()

	start := time.Now()
	err := d.Invoke(s, cb, ev)
	elapsed := time.Since(start)

	if d.metrics != nil {
		d.metrics.HandlerDuration.Observe(elapsed.Seconds())
	}

	if err != nil {
		span.RecordError(err)
		s.logger.Error("handler failed",
			"callback_id", cb.ID,
			"duration", elapsed,
			"error", err)
		if d.metrics != nil {
			d.metrics.HandlerFailures.Inc()
		}
		sendErrorToast(s, "Something went wrong")
		return
	}

	s.logger.Debug("handler done", "callback_id", cb.ID, "duration", elapsed)
}

// errorToastHost matches toast.HostID; pkg/toast depends on this package,
// so the failure surface builds its toast node directly.
const errorToastHost = "toast-host"

// sendErrorToast is the best-effort user-visible surface for handler
// failures. Pages without a toast host just ignore the command.
func sendErrorToast(s *Session, message string) {
	node := protocol.El("div",
		protocol.El("span", protocol.Text(message)).WithProp("class", "toast-message"),
	).
		WithProp("class", "toast toast-error").
		WithProp("role", "status")
	s.channel.Send(protocol.NewAppend(errorToastHost, node))
}

// Invoke runs the callback synchronously against the merged argument map
// and returns its failure, if any. A panicking handler is recovered and
// reported as a *HandlerError carrying the stack; it never takes down the
// session or the process.
func (d *Dispatcher) Invoke(s *Session, cb *Callback, ev *protocol.EventMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerError{
				SessionID:  s.ID,
				CallbackID: cb.ID,
				Panic:      r,
				Stack:      debug.Stack(),
			}
		}
	}()

	args := mergeArgs(s, cb, ev)
	if herr := cb.Handler(s, args); herr != nil {
		return &HandlerError{
			SessionID:  s.ID,
			CallbackID: cb.ID,
			Err:        herr,
		}
	}
	return nil
}

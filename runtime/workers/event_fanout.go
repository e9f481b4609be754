package workers

import (
	"context"
	"log/slog"
	"time"

	"tasks-lab/contract"
	"tasks-lab/domain"
	"tasks-lab/domain/event"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout hands every published envelope to the sinks, one after
// the other and in registration order, so that projections have applied
// an event before subscribers are told about it.
// Each sink gets its own deadline; a slow sink delays the others but
// cannot stall the pipeline.
type EventFanout struct {
	log           *slog.Logger
	events        chan domain.EventEnvelope
	telemetryChan chan event.Event
	sinks         []contract.EventSink
	sinkTimeout   time.Duration
}

func NewEventFanout(log *slog.Logger,
	events chan domain.EventEnvelope,
	telemetryChan chan event.Event,
	sinkTimeout time.Duration,
	sinks ...contract.EventSink) *EventFanout {
	return &EventFanout{
		log:           log,
		events:        events,
		telemetryChan: telemetryChan,
		sinks:         sinks,
		sinkTimeout:   sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case env := <-w.events:
			w.Fanout(ctx, env)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		}
	}
}

// Fanout One sink after the other for each event
func (w *EventFanout) Fanout(ctx context.Context, env domain.EventEnvelope) {
	for _, sink := range w.sinks {
		w.consume(ctx, sink, env)
	}
}

func (w *EventFanout) consume(ctx context.Context, sink contract.EventSink, env domain.EventEnvelope) {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()

	err := sink.Consume(sinkCtx, env)
	if err == nil {
		return
	}
	name := contract.GetSinkName(sink)
	if sinkCtx.Err() == context.DeadlineExceeded {
		select {
		case w.telemetryChan <- event.New(event.SinkTimeoutType, event.SinkTimeout{SinkName: name, Timeout: w.sinkTimeout}):
		default:
			w.log.Debug("Observability telemetry event lost")
		}
		return
	}
	w.log.Error("Sink failed", "sink", name, "event_id", env.ID, "error", err)
}

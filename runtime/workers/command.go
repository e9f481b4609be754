package workers

import (
	"context"
	"log/slog"

	"tasks-lab/contract"
	"tasks-lab/domain"
	"tasks-lab/domain/event"
)

var _ contract.Worker = (*CommandWorker)(nil)

// CommandWorker drains one shard of the command bus.
// Handling errors are logged, the worker keeps going.
type CommandWorker struct {
	log           *slog.Logger
	commands      chan domain.CommandEnvelope
	events        chan domain.EventEnvelope
	telemetryChan chan event.Event
	handler       contract.ICommandHandler
}

func NewCommandWorker(
	log *slog.Logger,
	handler contract.ICommandHandler,
	commands chan domain.CommandEnvelope,
	events chan domain.EventEnvelope,
	telemetryChan chan event.Event) *CommandWorker {
	return &CommandWorker{
		log:           log,
		commands:      commands,
		events:        events,
		telemetryChan: telemetryChan,
		handler:       handler,
	}
}

func (w *CommandWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping command worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			if err := w.handle(ctx, cmd); err != nil {
				return err
			}
		}
	}
}

func (w *CommandWorker) handle(ctx context.Context, cmd domain.CommandEnvelope) error {
	envelopes, err := w.handler.Handle(ctx, cmd)
	if err != nil {
		w.log.Error("Command failed", "command_id", cmd.ID, "type", cmd.Message.TypeName(), "error", err)
		return nil
	}
	rejected := false
	for _, env := range envelopes {
		rejected = rejected || env.Context.Rejection
		select {
		case <-ctx.Done():
			return ctx.Err()
		case w.events <- env:
		}
	}
	select {
	case w.telemetryChan <- event.New(event.CommandHandledType, event.CommandHandled{
		CommandType: cmd.Message.TypeName(),
		AggregateID: cmd.Message.AggregateID(),
		ReceivedAt:  cmd.Context.Timestamp,
		Rejected:    rejected,
	}):
	default:
		w.log.Debug("Observability telemetry event lost")
	}
	return nil
}

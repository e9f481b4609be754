// Package runtime hosts a bounded context: it moves commands to the
// aggregates and published events to the sinks. It orchestrates the
// system without containing business rules.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"tasks-lab/contract"
	"tasks-lab/domain"
	"tasks-lab/domain/event"
	"tasks-lab/projection"
	"tasks-lab/repositories"
	"tasks-lab/runtime/workers"
)

const TasksContextName = "Tasks"

type Options struct {
	NumWorkers           int
	BufferSize           int
	SinkTimeout          time.Duration
	RestartInterval      time.Duration
	MetricInterval       time.Duration
	LowCapacityThreshold int
	LatencyThreshold     time.Duration
}

// withDefaults fills the zero values, tickers and timeouts need positive durations.
func (o Options) withDefaults() Options {
	if o.NumWorkers < 1 {
		o.NumWorkers = 1
	}
	if o.BufferSize < 1 {
		o.BufferSize = 100
	}
	if o.SinkTimeout <= 0 {
		o.SinkTimeout = time.Second
	}
	if o.MetricInterval <= 0 {
		o.MetricInterval = 5 * time.Second
	}
	if o.LatencyThreshold <= 0 {
		o.LatencyThreshold = 500 * time.Millisecond
	}
	return o
}

type BoundedContext struct {
	mu             sync.Mutex
	name           string
	log            *slog.Logger
	opts           Options
	supervisor     *workers.Supervisor
	registry       *Registry
	bus            *CommandBus
	repository     *AggregateRepository
	eventStore     repositories.IEventStore
	taskStore      repositories.ITaskStore
	search         *projection.TaskSearchIndex
	permanentSinks []contract.EventSink
	published      chan domain.EventEnvelope
	telemetry      chan event.Event
	cancel         context.CancelFunc
	done           chan struct{}
}

func NewBoundedContext(name string, log *slog.Logger, opts Options,
	eventStore repositories.IEventStore, taskStore repositories.ITaskStore,
	search *projection.TaskSearchIndex) *BoundedContext {
	opts = opts.withDefaults()
	telemetry := make(chan event.Event, opts.BufferSize)
	log = log.With("context", name)
	return &BoundedContext{
		name:       name,
		log:        log,
		opts:       opts,
		supervisor: workers.NewSupervisor(log, telemetry, opts.RestartInterval),
		registry:   NewRegistry(),
		bus:        NewCommandBus(log, opts.NumWorkers, opts.BufferSize),
		repository: NewAggregateRepository(eventStore, log),
		eventStore: eventStore,
		taskStore:  taskStore,
		search:     search,
		permanentSinks: []contract.EventSink{
			projection.NewTaskProjection(taskStore, log),
			search,
		},
		published: make(chan domain.EventEnvelope, opts.BufferSize),
		telemetry: telemetry,
	}
}

// NewTasks builds the Tasks context, on badger when db is given, in memory otherwise.
func NewTasks(log *slog.Logger, opts Options, db *badger.DB) (*BoundedContext, error) {
	search, err := projection.NewTaskSearchIndex("", log)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return NewBoundedContext(TasksContextName, log, opts,
			repositories.NewMemoryEventStore(), repositories.NewMemoryTaskStore(), search), nil
	}
	return NewBoundedContext(TasksContextName, log, opts,
		repositories.NewBadgerEventStore(db, log), repositories.NewBadgerTaskStore(db, log), search), nil
}

func (b *BoundedContext) Name() string { return b.name }

func (b *BoundedContext) Bus() contract.ICommandBus { return b.bus }

func (b *BoundedContext) Registry() contract.IRegistry { return b.registry }

func (b *BoundedContext) Tasks() repositories.ITaskStore { return b.taskStore }

func (b *BoundedContext) Search() contract.ITaskSearch { return b.search }

func (b *BoundedContext) Repository() *AggregateRepository { return b.repository }

// Add registers extra permanent sinks. They run after the projections
// and before the subscriptions. Must be called before Start.
func (b *BoundedContext) Add(sinks ...contract.EventSink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.permanentSinks = append(b.permanentSinks, sinks...)
}

// AddWorkers registers extra workers run by the context supervisor.
// Must be called before Start.
func (b *BoundedContext) AddWorkers(w ...contract.Worker) {
	b.supervisor.Add(w...)
}

// Replay rebuilds the read side from the event store.
func (b *BoundedContext) Replay(ctx context.Context) error {
	count := 0
	err := b.eventStore.ReadAll(ctx, func(env domain.EventEnvelope) error {
		count++
		for _, sink := range b.permanentSinks {
			if err := sink.Consume(ctx, env); err != nil {
				return fmt.Errorf("replaying event %s: %w", env.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.log.Info(fmt.Sprintf("%d events replayed", count))
	return nil
}

// Start replays the store, then launches the supervised workers. It does not block.
func (b *BoundedContext) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done != nil {
		return fmt.Errorf("context %s already started", b.name)
	}
	if err := b.Replay(ctx); err != nil {
		return err
	}

	for i, shard := range b.bus.Shards() {
		b.supervisor.Add(workers.NewCommandWorker(b.log.With("shard", i), b.repository, shard, b.published, b.telemetry))
	}
	sinks := append(append([]contract.EventSink{}, b.permanentSinks...),
		NewSubscriptionSink(b.log, b.registry, b.taskStore))
	b.supervisor.Add(
		workers.NewEventFanout(b.log, b.published, b.telemetry, b.opts.SinkTimeout, sinks...),
		workers.NewChannelCapacityWorker(b.log, b.namedChannels(), b.telemetry, b.opts.MetricInterval),
		workers.NewHealthMonitoringWorker(b.log, b.telemetry, b.opts.MetricInterval),
		workers.NewTelemetryWorker(b.log, b.telemetry, b.telemetryHandlers()...),
	)

	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.done = make(chan struct{})
	go func() {
		defer close(b.done)
		b.supervisor.Run(runCtx)
	}()
	b.log.Info("Bounded context started", "workers", len(b.bus.Shards()))
	return nil
}

func (b *BoundedContext) namedChannels() []workers.NamedChannel {
	channels := []workers.NamedChannel{
		{Name: "published", Channel: b.published},
		{Name: "telemetry", Channel: b.telemetry},
	}
	for i, shard := range b.bus.Shards() {
		channels = append(channels, workers.NamedChannel{Name: fmt.Sprintf("commands-%d", i), Channel: shard})
	}
	return channels
}

func (b *BoundedContext) telemetryHandlers() []event.Handler {
	counter := event.NewCounter()
	return []event.Handler{
		event.NewWorkerRestartedAfterPanicHandler(b.log, counter),
		event.NewChannelCapacityHandler(b.log, b.opts.LowCapacityThreshold),
		event.NewProcessUsageHandler(b.log),
		event.NewCommandLatencyHandler(b.log, counter, b.opts.LatencyThreshold),
		event.NewSinkTimeoutHandler(b.log, counter),
	}
}

// Stop cancels the workers, waits for them, then ends every open subscription.
func (b *BoundedContext) Stop() {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.mu.Unlock()
	if cancel == nil {
		return
	}
	b.log.Info("Requesting bounded context shutdown")
	cancel()
	<-done
	b.registry.closeAll()
	b.log.Debug("Bounded context stopped")
}

package services_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tasks-lab/domain"
	"tasks-lab/repositories"
	"tasks-lab/runtime"
	"tasks-lab/services"
)

var errStop = errors.New("stop reading")

type tasksContext struct {
	bc            *runtime.BoundedContext
	commands      *services.CommandService
	queries       *services.QueryService
	subscriptions *services.SubscriptionService
}

func startTasks(t *testing.T) tasksContext {
	log := slog.Default()
	bc, err := runtime.NewTasks(log, runtime.Options{NumWorkers: 2, BufferSize: 10, SinkTimeout: time.Second}, nil)
	require.NoError(t, err)
	require.NoError(t, bc.Start(context.Background()))
	t.Cleanup(bc.Stop)
	return tasksContext{
		bc:            bc,
		commands:      services.NewCommandService(bc.Bus(), log),
		queries:       services.NewQueryService(bc.Tasks(), bc.Search(), log),
		subscriptions: services.NewSubscriptionService(bc.Registry(), 10, log),
	}
}

func awaitUpdate(t *testing.T, tc tasksContext, sub domain.Subscription) domain.SubscriptionUpdate {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var got domain.SubscriptionUpdate
	err := tc.subscriptions.Activate(ctx, sub, func(update domain.SubscriptionUpdate) error {
		got = update
		return errStop
	})
	require.ErrorIs(t, err, errStop)
	return got
}

func TestTasks_CreateTask_Is_Observed_Then_Queried(t *testing.T) {
	req := require.New(t)
	tc := startTasks(t)
	ctx := context.Background()
	id := domain.NewTaskID()
	cmd := domain.NewCommand(domain.NewUserID(), domain.CreateTask{ID: id, Title: "Reset wall clock"})

	// Given a subscription to the events of this very command
	sub, err := tc.subscriptions.Subscribe(ctx, domain.NewTopic("actor",
		domain.TopicTarget{Type: domain.TaskCreatedType, CommandID: &cmd.ID}))
	req.NoError(err)

	// When the command is posted
	ack := tc.commands.Post(ctx, cmd)
	req.Equal(domain.StatusOK, ack.Status)

	// Then exactly one TaskCreated with the same id and title is delivered
	update := awaitUpdate(t, tc, sub)
	req.Len(update.Events, 1)
	req.Equal(domain.TaskCreated{ID: id, Title: "Reset wall clock"}, update.Events[0].Message)
	req.Equal(cmd.ID, update.Events[0].Context.CommandID)
	req.NoError(tc.subscriptions.Cancel(ctx, sub))

	// And the task is readable by id and by title
	response, err := tc.queries.Read(ctx, domain.NewQuery("actor", id))
	req.NoError(err)
	req.Equal([]domain.Task{{ID: id, Title: "Reset wall clock", Version: 1}}, response.Tasks)

	byTitle := domain.NewQuery("actor")
	byTitle.Target.TitleContains = "clock"
	response, err = tc.queries.Read(ctx, byTitle)
	req.NoError(err)
	req.Len(response.Tasks, 1)
}

func TestTasks_Duplicate_Is_Rejected_To_Subscribers(t *testing.T) {
	req := require.New(t)
	tc := startTasks(t)
	ctx := context.Background()
	id := domain.NewTaskID()

	entities, err := tc.subscriptions.Subscribe(ctx, domain.NewTopic("actor",
		domain.TopicTarget{Type: domain.TaskType, IDs: []domain.TaskID{id}}))
	req.NoError(err)
	rejections, err := tc.subscriptions.Subscribe(ctx, domain.NewTopic("actor",
		domain.TopicTarget{Type: domain.TaskAlreadyExistsType}))
	req.NoError(err)

	// Given the task exists
	req.Equal(domain.StatusOK, tc.commands.Post(ctx, domain.NewCommand("actor", domain.CreateTask{ID: id, Title: "first"})).Status)
	state := awaitUpdate(t, tc, entities)
	req.Equal([]domain.Task{{ID: id, Title: "first", Version: 1}}, state.Tasks)

	// When it is created again
	duplicate := domain.NewCommand("actor", domain.CreateTask{ID: id, Title: "second"})
	req.Equal(domain.StatusOK, tc.commands.Post(ctx, duplicate).Status)

	// Then subscribers get the rejection and nothing was stored
	update := awaitUpdate(t, tc, rejections)
	req.Len(update.Events, 1)
	req.True(update.Events[0].Context.Rejection)
	req.Equal(domain.TaskAlreadyExists{ID: id}, update.Events[0].Message)
	req.Equal(duplicate.ID, update.Events[0].Context.CommandID)

	aggregate, err := tc.bc.Repository().Load(ctx, id)
	req.NoError(err)
	req.Equal(int64(1), aggregate.Version())
	task, _, err := tc.bc.Tasks().Read(ctx, id)
	req.NoError(err)
	req.Equal("first", task.Title)
}

func TestTasks_Replay_Rebuilds_Read_Side(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := slog.Default()
	db, err := repositories.OpenBadger("")
	req.NoError(err)
	defer func() { _ = db.Close() }()

	// Given an event already in the store
	events := repositories.NewBadgerEventStore(db, log)
	cmd := domain.NewCommand("actor", domain.CreateTask{ID: "a", Title: "Reset wall clock"})
	req.NoError(events.Append(ctx, "a", 0, []domain.EventEnvelope{
		domain.NewEventEnvelope(domain.TaskCreated{ID: "a", Title: "Reset wall clock"}, cmd, 1),
	}))

	// When a context is started on that store
	bc, err := runtime.NewTasks(log, runtime.Options{}, db)
	req.NoError(err)
	req.NoError(bc.Start(ctx))
	defer bc.Stop()

	// Then the task and its title index are rebuilt
	task, ok, err := bc.Tasks().Read(ctx, "a")
	req.NoError(err)
	req.True(ok)
	req.Equal("Reset wall clock", task.Title)
	ids, err := bc.Search().Search(ctx, "wall", 10)
	req.NoError(err)
	req.Equal([]domain.TaskID{"a"}, ids)
}

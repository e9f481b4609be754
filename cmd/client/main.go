package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"tasks-lab/domain"
	tasksErrors "tasks-lab/errors"
	"tasks-lab/grpc/client"
	"tasks-lab/internal"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

var errObserved = errors.New("event observed")

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run creates a task, waits for its TaskCreated event then reads it back.
func run() (int, error) {
	var config internal.ClientConfig
	if err := internal.Load(&config); err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := grpc.NewClient(config.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to connect to %s: %w", config.Addr(), err)
	}
	c := client.New(conn, config.Token)
	defer func() { _ = c.Close() }()

	actor := domain.NewUserID()
	taskID := domain.NewTaskID()
	cmd := domain.NewCommand(actor, domain.CreateTask{ID: taskID, Title: config.TaskTitle})
	logger.Info("Client started", "server", config.Addr(), "actor", actor)

	// 1. Subscribe to the events produced by our own command
	sub, err := c.Subscribe(ctx, domain.NewTopic(actor, domain.TopicTarget{
		Type:      domain.TaskCreatedType,
		CommandID: &cmd.ID,
	}))
	if err != nil {
		return exitRuntime, fmt.Errorf("subscribe failed: %w", err)
	}
	observed := observe(ctx, c, sub, config, logger)

	// 2. Post the command
	ack, err := c.Post(ctx, cmd)
	if err != nil {
		return exitRuntime, fmt.Errorf("post failed: %w", err)
	}
	if ack.Status != domain.StatusOK {
		return exitRuntime, fmt.Errorf("command %s refused: %s", ack.CommandID, ack.Error)
	}
	logger.Info("Command acknowledged", "command_id", ack.CommandID, "task_id", taskID)

	// 3. Wait for the event, bounded by the observe timeout
	if err := <-observed; err != nil {
		logger.Warn("TaskCreated not observed", "error", err)
	}
	// Leaving Activate already ended the subscription on the server.
	if err := c.Cancel(ctx, sub); err != nil && status.Code(err) != codes.NotFound && !errors.Is(err, context.Canceled) {
		logger.Warn("Cancelling the subscription failed", "error", err)
	}

	// 4. Read the task back
	response, err := c.Read(ctx, domain.NewQuery(actor, taskID))
	if err != nil {
		return exitRuntime, fmt.Errorf("query failed: %w", err)
	}
	if len(response.Tasks) == 0 {
		return exitRuntime, fmt.Errorf("%w: %s", tasksErrors.ErrTaskNotFound, taskID)
	}
	for _, task := range response.Tasks {
		logger.Info("Task read", "id", task.ID, "title", task.Title, "version", task.Version)
	}
	return exitOK, nil
}

// observe activates the subscription in the background. The returned channel
// yields nil once a TaskCreated arrived, or the reason it did not.
func observe(ctx context.Context, c *client.Client, sub domain.Subscription, config internal.ClientConfig, logger *slog.Logger) <-chan error {
	result := make(chan error, 1)
	go func() {
		observeCtx, cancel := context.WithTimeout(ctx, config.ObserveTimeout)
		defer cancel()
		err := c.Activate(observeCtx, sub, func(update domain.SubscriptionUpdate) error {
			for _, env := range update.Events {
				if created, ok := env.Message.(domain.TaskCreated); ok {
					logger.Info("TaskCreated observed", "id", created.ID, "title", created.Title, "version", env.Context.Version)
					return errObserved
				}
			}
			return nil
		})
		switch {
		case errors.Is(err, errObserved):
			result <- nil
		case err == nil:
			result <- fmt.Errorf("subscription ended before the event arrived")
		default:
			result <- err
		}
	}()
	return result
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/redis/go-redis/v9"

	"tasks-lab/internal"
	"tasks-lab/services"
	"tasks-lab/web"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Web bridge terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & Logger
	var config internal.ServerConfig
	if err := internal.Load(&config); err != nil {
		return exitConfig, err
	}
	var webConfig internal.WebConfig
	if err := internal.Load(&webConfig); err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Redis
	client := redis.NewClient(&redis.Options{Addr: webConfig.RedisAddr})
	defer func() { _ = client.Close() }()
	if err := client.Ping(ctx).Err(); err != nil {
		return exitRuntime, fmt.Errorf("redis unreachable at %s: %w", webConfig.RedisAddr, err)
	}

	// 3. Bounded context and bridges
	tasks, closeTasks, err := internal.NewTasksContext(ctx, config, logger)
	if err != nil {
		return exitRuntime, err
	}
	defer closeTasks()

	subscriptions := web.NewSubscriptionBridge(
		services.NewSubscriptionService(tasks.Registry(), config.SubscriptionBufferSize, logger),
		client, webConfig.SubscriptionTTL, logger)
	queries := web.NewQueryBridge(services.NewQueryService(tasks.Tasks(), tasks.Search(), logger),
		client, webConfig.QueryTTL, logger)
	tasks.AddWorkers(web.NewReaperWorker(logger, subscriptions, webConfig.ReapInterval))

	if err := tasks.Start(ctx); err != nil {
		return exitRuntime, fmt.Errorf("bounded context start failed: %w", err)
	}
	defer tasks.Stop()

	handler := web.NewHandler(logger, services.NewCommandService(tasks.Bus(), logger), queries, subscriptions)
	httpServer := &http.Server{
		Addr:              webConfig.HTTPAddr,
		Handler:           web.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", webConfig.HTTPAddr, "redis", webConfig.RedisAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	subscriptions.Close(shutdownCtx)
	tasks.Stop()
	logger.Info("Web bridge stopped cleanly")
	return exitOK, nil
}

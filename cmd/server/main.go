package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"

	"tasks-lab/auth"
	"tasks-lab/grpc/server"
	"tasks-lab/internal"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run hosts the Tasks bounded context in a gRPC container until a signal arrives.
func run() (int, error) {
	// 1. Configuration & Logger
	var config internal.ServerConfig
	if err := internal.Load(&config); err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Bounded context
	tasks, closeTasks, err := internal.NewTasksContext(ctx, config, logger)
	if err != nil {
		return exitRuntime, err
	}
	defer closeTasks()
	if err := tasks.Start(ctx); err != nil {
		return exitRuntime, fmt.Errorf("bounded context start failed: %w", err)
	}
	defer tasks.Stop()

	// 3. gRPC container
	var issuer *auth.Issuer
	if config.AuthSecret != "" {
		issuer = auth.NewIssuer(config.AuthSecret, config.AuthTokenDuration)
	}
	s, _ := server.New(logger, tasks, issuer, config.SubscriptionBufferSize)

	address := config.Addr()
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting gRPC server", "address", address, "context", tasks.Name(), "at", time.Now().UTC())
		for serviceName := range s.GetServiceInfo() {
			logger.Debug("gRPC exposed services", "name", serviceName)
		}
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 4. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 5. Graceful shutdown, open subscription streams end when the context stops
	logger.Info("Shutting down gracefully...")
	tasks.Stop()
	s.GracefulStop()
	logger.Info("Server stopped cleanly")
	return exitOK, nil
}

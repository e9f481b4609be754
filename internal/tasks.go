package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"tasks-lab/runtime"
)

// Options maps the server configuration to the bounded context options.
func (c ServerConfig) Options() runtime.Options {
	return runtime.Options{
		NumWorkers:           c.NumberOfWorkers,
		BufferSize:           c.BufferSize,
		SinkTimeout:          c.SinkTimeout,
		RestartInterval:      c.RestartInterval,
		MetricInterval:       c.MetricInterval,
		LowCapacityThreshold: c.LowCapacityThreshold,
		LatencyThreshold:     c.LatencyThreshold,
	}
}

// OpenBadger opens the database at path with a logging level following the
// logger's. An empty path returns a nil db, tasks then live in memory.
func OpenBadger(ctx context.Context, path string, logger *slog.Logger) (*badger.DB, error) {
	if path == "" {
		logger.Warn("No BADGER_FILEPATH configured, tasks are kept in memory")
		return nil, nil
	}
	options := badger.DefaultOptions(path)
	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}
	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("database opening failed: %w", err)
	}
	return db, nil
}

// NewTasksContext builds the Tasks bounded context on top of the configured
// storage. The returned close function releases the search index and the
// database, it must run after the context stopped.
func NewTasksContext(ctx context.Context, cfg ServerConfig, logger *slog.Logger) (*runtime.BoundedContext, func(), error) {
	db, err := OpenBadger(ctx, cfg.BadgerFilepath, logger)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if db != nil {
			logger.Info("Closing BadgerDB...")
			_ = db.Close()
		}
	}
	bc, err := runtime.NewTasks(logger, cfg.Options(), db)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return bc, func() {
		if closer, ok := bc.Search().(io.Closer); ok {
			_ = closer.Close()
		}
		closeDB()
	}, nil
}

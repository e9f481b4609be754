package web

import (
	"context"
	"log/slog"
	"time"
)

// ReaperWorker periodically drops the subscriptions nobody kept up.
type ReaperWorker struct {
	log      *slog.Logger
	bridge   *SubscriptionBridge
	interval time.Duration
}

func NewReaperWorker(log *slog.Logger, bridge *SubscriptionBridge, interval time.Duration) *ReaperWorker {
	return &ReaperWorker{log: log, bridge: bridge, interval: interval}
}

func (w *ReaperWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping reaper")
			return nil
		case <-ticker.C:
			if n := w.bridge.Reap(ctx); n > 0 {
				w.log.Info("Expired subscriptions reaped", "count", n)
			}
		}
	}
}

package web

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tasks-lab/codec"
	"tasks-lab/domain"
	"tasks-lab/errors"
	"tasks-lab/services"
)

type activeSubscription struct {
	sub      domain.Subscription
	cancel   context.CancelFunc
	deadline time.Time
}

// SubscriptionBridge keeps subscriptions alive on behalf of HTTP clients.
// Every update is appended to the Redis list of the subscription and
// published on the channel of the same name. Clients must keep up a
// subscription before its TTL elapses or it is reaped.
type SubscriptionBridge struct {
	mu            sync.Mutex
	subscriptions services.ISubscriptionService
	redis         *redis.Client
	ttl           time.Duration
	log           *slog.Logger
	active        map[uuid.UUID]*activeSubscription
	now           func() time.Time
}

func NewSubscriptionBridge(subscriptions services.ISubscriptionService, client *redis.Client, ttl time.Duration, log *slog.Logger) *SubscriptionBridge {
	return &SubscriptionBridge{
		subscriptions: subscriptions,
		redis:         client,
		ttl:           ttl,
		log:           log,
		active:        make(map[uuid.UUID]*activeSubscription),
		now:           time.Now,
	}
}

func SubscriptionPath(id uuid.UUID) string {
	return "subscription:" + id.String()
}

// Create subscribes to the topic and starts mirroring its updates.
func (b *SubscriptionBridge) Create(ctx context.Context, topic domain.Topic) (domain.Subscription, error) {
	sub, err := b.subscriptions.Subscribe(ctx, topic)
	if err != nil {
		return domain.Subscription{}, err
	}
	mirrorCtx, cancel := context.WithCancel(context.Background())
	b.mu.Lock()
	b.active[sub.ID] = &activeSubscription{sub: sub, cancel: cancel, deadline: b.now().Add(b.ttl)}
	b.mu.Unlock()

	go b.mirror(mirrorCtx, sub)
	b.log.Debug("Subscription bridged", "subscription_id", sub.ID, "type", sub.Topic.Target.Type)
	return sub, nil
}

func (b *SubscriptionBridge) mirror(ctx context.Context, sub domain.Subscription) {
	err := b.subscriptions.Activate(ctx, sub, func(update domain.SubscriptionUpdate) error {
		return b.publish(ctx, update)
	})
	if ctx.Err() != nil {
		return
	}
	// Nothing mirrors the subscription anymore: drop it so KeepUp fails.
	if err != nil {
		b.log.Warn("Subscription mirroring stopped", "subscription_id", sub.ID, "error", err)
	}
	if err := b.Cancel(context.Background(), sub.ID); err != nil && !errors.Is(err, errors.ErrSubscriptionNotFound) {
		b.log.Warn("Failed to cancel unmirrored subscription", "subscription_id", sub.ID, "error", err)
	}
}

func (b *SubscriptionBridge) publish(ctx context.Context, update domain.SubscriptionUpdate) error {
	msg, err := codec.EncodeUpdate(update)
	if err != nil {
		return err
	}
	data, err := codec.MarshalJSON(msg)
	if err != nil {
		return err
	}
	path := SubscriptionPath(update.SubscriptionID)
	_, err = b.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, path, data)
		pipe.Expire(ctx, path, b.ttl)
		pipe.Publish(ctx, path, data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("mirroring update: %w", err)
	}
	return nil
}

// KeepUp extends the life of a subscription by one TTL.
func (b *SubscriptionBridge) KeepUp(ctx context.Context, id uuid.UUID) error {
	b.mu.Lock()
	active, ok := b.active[id]
	if ok {
		active.deadline = b.now().Add(b.ttl)
	}
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrSubscriptionNotFound, id)
	}
	if err := b.redis.Expire(ctx, SubscriptionPath(id), b.ttl).Err(); err != nil {
		return fmt.Errorf("refreshing subscription: %w", err)
	}
	return nil
}

func (b *SubscriptionBridge) Cancel(ctx context.Context, id uuid.UUID) error {
	b.mu.Lock()
	active, ok := b.active[id]
	delete(b.active, id)
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrSubscriptionNotFound, id)
	}
	active.cancel()
	if err := b.subscriptions.Cancel(ctx, active.sub); err != nil && !errors.Is(err, errors.ErrSubscriptionNotFound) {
		return err
	}
	b.log.Debug("Subscription cancelled", "subscription_id", id)
	return nil
}

// Reap cancels the subscriptions whose deadline passed and returns how many.
func (b *SubscriptionBridge) Reap(ctx context.Context) int {
	now := b.now()
	var expired []uuid.UUID
	b.mu.Lock()
	for id, active := range b.active {
		if now.After(active.deadline) {
			expired = append(expired, id)
		}
	}
	b.mu.Unlock()

	for _, id := range expired {
		if err := b.Cancel(ctx, id); err != nil && !errors.Is(err, errors.ErrSubscriptionNotFound) {
			b.log.Warn("Failed to reap subscription", "subscription_id", id, "error", err)
		}
	}
	return len(expired)
}

// Close cancels every bridged subscription.
func (b *SubscriptionBridge) Close(ctx context.Context) {
	b.mu.Lock()
	ids := make([]uuid.UUID, 0, len(b.active))
	for id := range b.active {
		ids = append(ids, id)
	}
	b.mu.Unlock()
	for _, id := range ids {
		_ = b.Cancel(ctx, id)
	}
}

package runtime

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"tasks-lab/contract"
	"tasks-lab/domain"
	"tasks-lab/errors"
)

type Set map[uuid.UUID]struct{}

var _ contract.IRegistry = (*Registry)(nil)

type Registry struct {
	mu            sync.RWMutex
	subscriptions map[uuid.UUID]contract.Subscriber // subscription id -> subscriber
	byType        map[string]Set                    // observed type -> subscription ids
}

func NewRegistry() *Registry {
	return &Registry{
		subscriptions: make(map[uuid.UUID]contract.Subscriber),
		byType:        make(map[string]Set),
	}
}

// SubscribersFor retrieves every active subscription observing a type.
// It performs a two-step lookup: ids from the type index, then subscribers.
func (r *Registry) SubscribersFor(typeName string) []contract.Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, ok := r.byType[domain.TypeName(typeName)]
	if !ok {
		return nil
	}
	subscribers := make([]contract.Subscriber, 0, len(ids))
	for id := range ids {
		if s, exists := r.subscriptions[id]; exists {
			subscribers = append(subscribers, s)
		}
	}
	return subscribers
}

// Subscribe registers a sink under the subscription id. An id that is
// already taken is refused so its sink is never orphaned.
func (r *Registry) Subscribe(sub domain.Subscription, sink contract.UpdateSink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.subscriptions[sub.ID]; taken {
		return fmt.Errorf("%w: %s", errors.ErrSubscriptionExists, sub.ID)
	}
	r.subscriptions[sub.ID] = contract.Subscriber{Subscription: sub, Sink: sink}

	typeName := domain.TypeName(sub.Topic.Target.Type)
	if _, ok := r.byType[typeName]; !ok {
		r.byType[typeName] = make(Set)
	}
	r.byType[typeName][sub.ID] = struct{}{}
	return nil
}

func (r *Registry) Lookup(id uuid.UUID) (contract.Subscriber, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.subscriptions[id]
	return s, ok
}

// Unsubscribe removes a subscription and returns its sink.
// Empty type entries are removed so the index does not grow forever.
func (r *Registry) Unsubscribe(id uuid.UUID) (contract.UpdateSink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.subscriptions[id]
	if !ok {
		return nil, false
	}
	delete(r.subscriptions, id)

	typeName := domain.TypeName(s.Subscription.Topic.Target.Type)
	if ids, ok := r.byType[typeName]; ok {
		delete(ids, id)
		if len(ids) == 0 {
			delete(r.byType, typeName)
		}
	}
	return s.Sink, true
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.subscriptions {
		s.Sink.Close()
		delete(r.subscriptions, id)
	}
	r.byType = make(map[string]Set)
}

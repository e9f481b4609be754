package codec

import (
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"tasks-lab/domain"
	"tasks-lab/errors"
)

func toStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidMessage, err)
	}
	return s, nil
}

func fromStruct(s *structpb.Struct) (fields, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil struct", errors.ErrInvalidMessage)
	}
	return s.AsMap(), nil
}

func encodeActor(c domain.ActorContext) map[string]any {
	return map[string]any{"actor": string(c.Actor), "timestamp": formatTime(c.Timestamp)}
}

func decodeActor(f fields) (domain.ActorContext, error) {
	ctx, err := f.object("context")
	if err != nil {
		return domain.ActorContext{}, err
	}
	actor, err := ctx.optStr("actor")
	if err != nil {
		return domain.ActorContext{}, err
	}
	ts, err := ctx.time("timestamp")
	if err != nil {
		return domain.ActorContext{}, err
	}
	return domain.ActorContext{Actor: domain.UserID(actor), Timestamp: ts}, nil
}

func EncodeCommand(env domain.CommandEnvelope) (*structpb.Struct, error) {
	msg, err := EncodeMessage(env.Message)
	if err != nil {
		return nil, err
	}
	return toStruct(map[string]any{
		"id":      env.ID.String(),
		"message": msg,
		"context": encodeActor(env.Context),
	})
}

func DecodeCommand(s *structpb.Struct) (domain.CommandEnvelope, error) {
	f, err := fromStruct(s)
	if err != nil {
		return domain.CommandEnvelope{}, err
	}
	return decodeCommand(f)
}

func decodeCommand(f fields) (domain.CommandEnvelope, error) {
	id, err := f.uuid("id")
	if err != nil {
		return domain.CommandEnvelope{}, err
	}
	raw, err := f.object("message")
	if err != nil {
		return domain.CommandEnvelope{}, err
	}
	msg, err := DecodeMessage(raw)
	if err != nil {
		return domain.CommandEnvelope{}, err
	}
	cmd, ok := msg.(domain.Command)
	if !ok {
		return domain.CommandEnvelope{}, fmt.Errorf("%w: %T is not a command", errors.ErrInvalidMessage, msg)
	}
	actor, err := decodeActor(f)
	if err != nil {
		return domain.CommandEnvelope{}, err
	}
	return domain.CommandEnvelope{ID: id, Message: cmd, Context: actor}, nil
}

func encodeEvent(env domain.EventEnvelope) (map[string]any, error) {
	msg, err := EncodeMessage(env.Message)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":      env.ID.String(),
		"message": msg,
		"context": map[string]any{
			"command_id": env.Context.CommandID.String(),
			"actor":      string(env.Context.Actor),
			"version":    env.Context.Version,
			"timestamp":  formatTime(env.Context.Timestamp),
			"rejection":  env.Context.Rejection,
		},
	}, nil
}

func decodeEvent(f fields) (domain.EventEnvelope, error) {
	id, err := f.uuid("id")
	if err != nil {
		return domain.EventEnvelope{}, err
	}
	raw, err := f.object("message")
	if err != nil {
		return domain.EventEnvelope{}, err
	}
	msg, err := DecodeMessage(raw)
	if err != nil {
		return domain.EventEnvelope{}, err
	}
	evt, ok := msg.(domain.Event)
	if !ok || !domain.IsEventType(evt.TypeName()) {
		return domain.EventEnvelope{}, fmt.Errorf("%w: %T is not an event", errors.ErrInvalidMessage, msg)
	}
	c, err := f.object("context")
	if err != nil {
		return domain.EventEnvelope{}, err
	}
	var ctx domain.EventContext
	if ctx.CommandID, err = c.uuid("command_id"); err != nil {
		return domain.EventEnvelope{}, err
	}
	actor, err := c.optStr("actor")
	if err != nil {
		return domain.EventEnvelope{}, err
	}
	ctx.Actor = domain.UserID(actor)
	if ctx.Version, err = c.int64("version"); err != nil {
		return domain.EventEnvelope{}, err
	}
	if ctx.Timestamp, err = c.time("timestamp"); err != nil {
		return domain.EventEnvelope{}, err
	}
	if ctx.Rejection, err = c.bool("rejection"); err != nil {
		return domain.EventEnvelope{}, err
	}
	return domain.EventEnvelope{ID: id, Message: evt, Context: ctx}, nil
}

func EncodeEvent(env domain.EventEnvelope) (*structpb.Struct, error) {
	m, err := encodeEvent(env)
	if err != nil {
		return nil, err
	}
	return toStruct(m)
}

func DecodeEvent(s *structpb.Struct) (domain.EventEnvelope, error) {
	f, err := fromStruct(s)
	if err != nil {
		return domain.EventEnvelope{}, err
	}
	return decodeEvent(f)
}

func EncodeTask(t domain.Task) (*structpb.Struct, error) {
	return toStruct(encodeTask(t))
}

func DecodeTask(s *structpb.Struct) (domain.Task, error) {
	f, err := fromStruct(s)
	if err != nil {
		return domain.Task{}, err
	}
	return decodeTask(f)
}

func EncodeAck(ack domain.Ack) (*structpb.Struct, error) {
	return toStruct(map[string]any{
		"command_id": ack.CommandID.String(),
		"status":     string(ack.Status),
		"error":      ack.Error,
	})
}

func DecodeAck(s *structpb.Struct) (domain.Ack, error) {
	f, err := fromStruct(s)
	if err != nil {
		return domain.Ack{}, err
	}
	id, err := f.uuid("command_id")
	if err != nil {
		return domain.Ack{}, err
	}
	status, err := f.str("status")
	if err != nil {
		return domain.Ack{}, err
	}
	msg, err := f.optStr("error")
	if err != nil {
		return domain.Ack{}, err
	}
	return domain.Ack{CommandID: id, Status: domain.Status(status), Error: msg}, nil
}

func EncodeQuery(q domain.Query) (*structpb.Struct, error) {
	return toStruct(map[string]any{
		"id": q.ID.String(),
		"target": map[string]any{
			"type":           domain.TypeURL(domain.TypeName(q.Target.Type)),
			"ids":            taskIDs(q.Target.IDs),
			"title_contains": q.Target.TitleContains,
		},
		"context": encodeActor(q.Context),
	})
}

func DecodeQuery(s *structpb.Struct) (domain.Query, error) {
	f, err := fromStruct(s)
	if err != nil {
		return domain.Query{}, err
	}
	id, err := f.uuid("id")
	if err != nil {
		return domain.Query{}, err
	}
	t, err := f.object("target")
	if err != nil {
		return domain.Query{}, err
	}
	typeURL, err := t.str("type")
	if err != nil {
		return domain.Query{}, err
	}
	ids, err := decodeTaskIDs(t, "ids")
	if err != nil {
		return domain.Query{}, err
	}
	contains, err := t.optStr("title_contains")
	if err != nil {
		return domain.Query{}, err
	}
	actor, err := decodeActor(f)
	if err != nil {
		return domain.Query{}, err
	}
	return domain.Query{
		ID:      id,
		Target:  domain.Target{Type: domain.TypeName(typeURL), IDs: ids, TitleContains: contains},
		Context: actor,
	}, nil
}

func EncodeQueryResponse(r domain.QueryResponse) (*structpb.Struct, error) {
	return toStruct(map[string]any{
		"status": string(r.Status),
		"tasks":  encodeTasks(r.Tasks),
	})
}

func DecodeQueryResponse(s *structpb.Struct) (domain.QueryResponse, error) {
	f, err := fromStruct(s)
	if err != nil {
		return domain.QueryResponse{}, err
	}
	status, err := f.str("status")
	if err != nil {
		return domain.QueryResponse{}, err
	}
	tasks, err := decodeTasks(f, "tasks")
	if err != nil {
		return domain.QueryResponse{}, err
	}
	return domain.QueryResponse{Status: domain.Status(status), Tasks: tasks}, nil
}

func encodeTopic(t domain.Topic) map[string]any {
	target := map[string]any{
		"type": domain.TypeURL(domain.TypeName(t.Target.Type)),
		"ids":  taskIDs(t.Target.IDs),
	}
	if t.Target.CommandID != nil {
		target["command_id"] = t.Target.CommandID.String()
	}
	return map[string]any{
		"id":      t.ID.String(),
		"target":  target,
		"context": encodeActor(t.Context),
	}
}

func decodeTopic(f fields) (domain.Topic, error) {
	id, err := f.uuid("id")
	if err != nil {
		return domain.Topic{}, err
	}
	t, err := f.object("target")
	if err != nil {
		return domain.Topic{}, err
	}
	typeURL, err := t.str("type")
	if err != nil {
		return domain.Topic{}, err
	}
	ids, err := decodeTaskIDs(t, "ids")
	if err != nil {
		return domain.Topic{}, err
	}
	target := domain.TopicTarget{Type: domain.TypeName(typeURL), IDs: ids}
	raw, err := t.optStr("command_id")
	if err != nil {
		return domain.Topic{}, err
	}
	if raw != "" {
		cmdID, err := uuid.Parse(raw)
		if err != nil {
			return domain.Topic{}, fmt.Errorf("%w: command_id: %v", errors.ErrInvalidMessage, err)
		}
		target.CommandID = &cmdID
	}
	actor, err := decodeActor(f)
	if err != nil {
		return domain.Topic{}, err
	}
	return domain.Topic{ID: id, Target: target, Context: actor}, nil
}

func EncodeTopic(t domain.Topic) (*structpb.Struct, error) {
	return toStruct(encodeTopic(t))
}

func DecodeTopic(s *structpb.Struct) (domain.Topic, error) {
	f, err := fromStruct(s)
	if err != nil {
		return domain.Topic{}, err
	}
	return decodeTopic(f)
}

func EncodeSubscription(sub domain.Subscription) (*structpb.Struct, error) {
	m := map[string]any{"id": sub.ID.String()}
	if sub.Topic.ID != uuid.Nil {
		m["topic"] = encodeTopic(sub.Topic)
	}
	return toStruct(m)
}

func DecodeSubscription(s *structpb.Struct) (domain.Subscription, error) {
	f, err := fromStruct(s)
	if err != nil {
		return domain.Subscription{}, err
	}
	id, err := f.uuid("id")
	if err != nil {
		return domain.Subscription{}, err
	}
	var topic domain.Topic
	if _, ok := f["topic"]; ok {
		raw, err := f.object("topic")
		if err != nil {
			return domain.Subscription{}, err
		}
		if topic, err = decodeTopic(raw); err != nil {
			return domain.Subscription{}, err
		}
	}
	return domain.Subscription{ID: id, Topic: topic}, nil
}

func EncodeUpdate(u domain.SubscriptionUpdate) (*structpb.Struct, error) {
	m := map[string]any{"subscription_id": u.SubscriptionID.String()}
	if len(u.Tasks) > 0 {
		m["tasks"] = encodeTasks(u.Tasks)
	}
	if len(u.Events) > 0 {
		events := make([]any, 0, len(u.Events))
		for _, env := range u.Events {
			e, err := encodeEvent(env)
			if err != nil {
				return nil, err
			}
			events = append(events, e)
		}
		m["events"] = events
	}
	return toStruct(m)
}

func DecodeUpdate(s *structpb.Struct) (domain.SubscriptionUpdate, error) {
	f, err := fromStruct(s)
	if err != nil {
		return domain.SubscriptionUpdate{}, err
	}
	id, err := f.uuid("subscription_id")
	if err != nil {
		return domain.SubscriptionUpdate{}, err
	}
	tasks, err := decodeTasks(f, "tasks")
	if err != nil {
		return domain.SubscriptionUpdate{}, err
	}
	items, err := f.objects("events")
	if err != nil {
		return domain.SubscriptionUpdate{}, err
	}
	update := domain.SubscriptionUpdate{SubscriptionID: id}
	if len(tasks) > 0 {
		update.Tasks = tasks
	}
	for _, item := range items {
		env, err := decodeEvent(item)
		if err != nil {
			return domain.SubscriptionUpdate{}, err
		}
		update.Events = append(update.Events, env)
	}
	return update, nil
}

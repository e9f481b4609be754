// Package codec maps the domain messages to and from protobuf Struct
// values. Every message carries its type URL under the "@type" key,
// the same convention google.protobuf.Any uses in JSON.
package codec

import (
	"fmt"

	"github.com/samber/lo"

	"tasks-lab/domain"
	"tasks-lab/errors"
)

const typeKey = "@type"

// EncodeMessage turns a command, an event or an entity state into a map.
func EncodeMessage(msg any) (map[string]any, error) {
	switch m := msg.(type) {
	case domain.CreateTask:
		return map[string]any{typeKey: domain.TypeURL(domain.CreateTaskType), "id": string(m.ID), "title": m.Title}, nil
	case domain.TaskCreated:
		return map[string]any{typeKey: domain.TypeURL(domain.TaskCreatedType), "id": string(m.ID), "title": m.Title}, nil
	case domain.TaskAlreadyExists:
		return map[string]any{typeKey: domain.TypeURL(domain.TaskAlreadyExistsType), "id": string(m.ID)}, nil
	case domain.Task:
		return encodeTask(m), nil
	default:
		return nil, fmt.Errorf("%w: %T", errors.ErrUnknownType, msg)
	}
}

// DecodeMessage is the inverse of EncodeMessage.
func DecodeMessage(m map[string]any) (any, error) {
	f := fields(m)
	typeURL, err := f.str(typeKey)
	if err != nil {
		return nil, err
	}
	switch domain.TypeName(typeURL) {
	case domain.CreateTaskType:
		id, title, err := idAndTitle(f)
		if err != nil {
			return nil, err
		}
		return domain.CreateTask{ID: id, Title: title}, nil
	case domain.TaskCreatedType:
		id, title, err := idAndTitle(f)
		if err != nil {
			return nil, err
		}
		return domain.TaskCreated{ID: id, Title: title}, nil
	case domain.TaskAlreadyExistsType:
		id, err := f.str("id")
		if err != nil {
			return nil, err
		}
		return domain.TaskAlreadyExists{ID: domain.TaskID(id)}, nil
	case domain.TaskType:
		return decodeTask(f)
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownType, typeURL)
	}
}

func idAndTitle(f fields) (domain.TaskID, string, error) {
	id, err := f.str("id")
	if err != nil {
		return "", "", err
	}
	title, err := f.optStr("title")
	if err != nil {
		return "", "", err
	}
	return domain.TaskID(id), title, nil
}

func encodeTask(t domain.Task) map[string]any {
	return map[string]any{
		typeKey:   domain.TypeURL(domain.TaskType),
		"id":      string(t.ID),
		"title":   t.Title,
		"version": t.Version,
	}
}

func decodeTask(f fields) (domain.Task, error) {
	id, title, err := idAndTitle(f)
	if err != nil {
		return domain.Task{}, err
	}
	version, err := f.int64("version")
	if err != nil {
		return domain.Task{}, err
	}
	return domain.Task{ID: id, Title: title, Version: version}, nil
}

func encodeTasks(tasks []domain.Task) []any {
	return lo.Map(tasks, func(t domain.Task, _ int) any { return encodeTask(t) })
}

func decodeTasks(f fields, key string) ([]domain.Task, error) {
	items, err := f.objects(key)
	if err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, 0, len(items))
	for _, item := range items {
		t, err := decodeTask(item)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func taskIDs(ids []domain.TaskID) []any {
	return lo.Map(ids, func(id domain.TaskID, _ int) any { return string(id) })
}

func decodeTaskIDs(f fields, key string) ([]domain.TaskID, error) {
	ids, err := f.strs(key)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return lo.Map(ids, func(id string, _ int) domain.TaskID { return domain.TaskID(id) }), nil
}

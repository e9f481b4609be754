package codec

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"tasks-lab/errors"
)

// fields reads values out of a decoded struct, wrapping every
// type mismatch into errors.ErrInvalidMessage.
type fields map[string]any

func (f fields) str(key string) (string, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: missing %q", errors.ErrInvalidMessage, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is not a string", errors.ErrInvalidMessage, key)
	}
	return s, nil
}

func (f fields) optStr(key string) (string, error) {
	if v, ok := f[key]; !ok || v == nil {
		return "", nil
	}
	return f.str(key)
}

func (f fields) uuid(key string) (uuid.UUID, error) {
	s, err := f.str(key)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q: %v", errors.ErrInvalidMessage, key, err)
	}
	return id, nil
}

func (f fields) int64(key string) (int64, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return 0, nil
	}
	n, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a number", errors.ErrInvalidMessage, key)
	}
	return int64(n), nil
}

func (f fields) bool(key string) (bool, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q is not a boolean", errors.ErrInvalidMessage, key)
	}
	return b, nil
}

func (f fields) time(key string) (time.Time, error) {
	s, err := f.optStr(key)
	if err != nil || s == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", errors.ErrInvalidMessage, key, err)
	}
	return t, nil
}

func (f fields) object(key string) (fields, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: missing %q", errors.ErrInvalidMessage, key)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an object", errors.ErrInvalidMessage, key)
	}
	return m, nil
}

func (f fields) objects(key string) ([]fields, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a list", errors.ErrInvalidMessage, key)
	}
	out := make([]fields, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q holds a non object", errors.ErrInvalidMessage, key)
		}
		out = append(out, m)
	}
	return out, nil
}

func (f fields) strs(key string) ([]string, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a list", errors.ErrInvalidMessage, key)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %q holds a non string", errors.ErrInvalidMessage, key)
		}
		out = append(out, s)
	}
	return out, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

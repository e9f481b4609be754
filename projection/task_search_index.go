package projection

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blugelabs/bluge"

	"tasks-lab/contract"
	"tasks-lab/domain"
)

const titleField = "title"

var (
	_ contract.EventSink   = (*TaskSearchIndex)(nil)
	_ contract.ITaskSearch = (*TaskSearchIndex)(nil)
)

// TaskSearchIndex is a full-text index over task titles.
type TaskSearchIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

// NewTaskSearchIndex opens an index at path, in memory when path is empty.
func NewTaskSearchIndex(path string, log *slog.Logger) (*TaskSearchIndex, error) {
	cfg := bluge.InMemoryOnlyConfig()
	if path != "" {
		cfg = bluge.DefaultConfig(path)
	}
	writer, err := bluge.OpenWriter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	return &TaskSearchIndex{writer: writer, log: log}, nil
}

func (i *TaskSearchIndex) Consume(_ context.Context, env domain.EventEnvelope) error {
	if env.Context.Rejection {
		return nil
	}
	switch evt := env.Message.(type) {
	case domain.TaskCreated:
		doc := bluge.NewDocument(string(evt.ID)).
			AddField(bluge.NewTextField(titleField, evt.Title))
		return i.writer.Update(doc.ID(), doc)
	default:
		return nil
	}
}

// Search returns the ids of the tasks whose title matches text, best match first.
func (i *TaskSearchIndex) Search(ctx context.Context, text string, limit int) ([]domain.TaskID, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	query := bluge.NewMatchQuery(text).SetField(titleField)
	var request bluge.SearchRequest = bluge.NewAllMatches(query)
	if limit > 0 {
		request = bluge.NewTopNSearch(limit, query)
	}
	matches, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}
	var ids []domain.TaskID
	match, err := matches.Next()
	for err == nil && match != nil {
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				ids = append(ids, domain.TaskID(value))
				return false
			}
			return true
		})
		if err != nil {
			break
		}
		match, err = matches.Next()
	}
	return ids, err
}

func (i *TaskSearchIndex) Close() error {
	return i.writer.Close()
}

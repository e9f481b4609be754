package projection

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"tasks-lab/domain"
)

func TestTaskSearchIndex_Finds_Titles(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index, err := NewTaskSearchIndex("", slog.Default())
	req.NoError(err)
	defer func() { _ = index.Close() }()

	// Given two indexed tasks
	req.NoError(index.Consume(ctx, created("a", "Reset wall clock", 1)))
	req.NoError(index.Consume(ctx, created("b", "Water the plants", 1)))

	// When searching a word of one title
	ids, err := index.Search(ctx, "clock", 10)

	// Then only that task comes back
	req.NoError(err)
	req.Len(ids, 1)
	req.EqualValues("a", ids[0])

	// And unknown words match nothing
	ids, err = index.Search(ctx, "laundry", 10)
	req.NoError(err)
	req.Empty(ids)
}

func TestTaskSearchIndex_Zero_Limit_Returns_Every_Match(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index, err := NewTaskSearchIndex("", slog.Default())
	req.NoError(err)
	defer func() { _ = index.Close() }()

	// Given more matching tasks than a page
	for i := range 5 {
		id := fmt.Sprintf("task-%d", i)
		req.NoError(index.Consume(ctx, created(domain.TaskID(id), "Wash car "+id, 1)))
	}

	// When searching without limit
	ids, err := index.Search(ctx, "wash", 0)

	// Then every match comes back
	req.NoError(err)
	req.Len(ids, 5)

	// And a positive limit still bounds the result
	ids, err = index.Search(ctx, "wash", 2)
	req.NoError(err)
	req.Len(ids, 2)
}

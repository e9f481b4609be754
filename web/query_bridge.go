package web

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tasks-lab/codec"
	"tasks-lab/domain"
	"tasks-lab/services"
)

// QueryResult tells the client where the response was written.
type QueryResult struct {
	Path  string
	Count int
}

// QueryBridge runs queries and stores their responses in Redis
// for a limited time.
type QueryBridge struct {
	queries services.IQueryService
	redis   *redis.Client
	ttl     time.Duration
	log     *slog.Logger
}

func NewQueryBridge(queries services.IQueryService, client *redis.Client, ttl time.Duration, log *slog.Logger) *QueryBridge {
	return &QueryBridge{queries: queries, redis: client, ttl: ttl, log: log}
}

func QueryPath(id uuid.UUID) string {
	return "query:" + id.String()
}

func (b *QueryBridge) Send(ctx context.Context, query domain.Query) (QueryResult, error) {
	response, err := b.queries.Read(ctx, query)
	if err != nil {
		return QueryResult{}, err
	}
	msg, err := codec.EncodeQueryResponse(response)
	if err != nil {
		return QueryResult{}, err
	}
	data, err := codec.MarshalJSON(msg)
	if err != nil {
		return QueryResult{}, err
	}
	path := QueryPath(query.ID)
	if err := b.redis.Set(ctx, path, data, b.ttl).Err(); err != nil {
		return QueryResult{}, fmt.Errorf("storing query result: %w", err)
	}
	b.log.Debug("Query result stored", "path", path, "count", len(response.Tasks))
	return QueryResult{Path: path, Count: len(response.Tasks)}, nil
}

package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"tasks-lab/codec"
	"tasks-lab/domain"
	"tasks-lab/errors"
	"tasks-lab/runtime"
	"tasks-lab/services"
	"tasks-lab/web"
)

type fixture struct {
	server     *httptest.Server
	redis      *redis.Client
	bridge     *web.SubscriptionBridge
	bc         *runtime.BoundedContext
	closeRedis func()
}

func setup(t *testing.T, subscriptionTTL time.Duration) fixture {
	log := slog.Default()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	closeRedis := sync.OnceFunc(mr.Close)

	bc, err := runtime.NewTasks(log, runtime.Options{NumWorkers: 2, BufferSize: 10}, nil)
	require.NoError(t, err)
	require.NoError(t, bc.Start(context.Background()))

	bridge := web.NewSubscriptionBridge(services.NewSubscriptionService(bc.Registry(), 10, log), client, subscriptionTTL, log)
	handler := web.NewHandler(log,
		services.NewCommandService(bc.Bus(), log),
		web.NewQueryBridge(services.NewQueryService(bc.Tasks(), bc.Search(), log), client, time.Minute, log),
		bridge)
	server := httptest.NewServer(web.NewRouter(handler))

	t.Cleanup(func() {
		server.Close()
		bridge.Close(context.Background())
		bc.Stop()
		_ = client.Close()
		closeRedis()
	})
	return fixture{server: server, redis: client, bridge: bridge, bc: bc, closeRedis: closeRedis}
}

func mustEncode(msg *structpb.Struct, err error) *structpb.Struct {
	if err != nil {
		panic(err)
	}
	return msg
}

func (f fixture) post(t *testing.T, path string, msg *structpb.Struct) *http.Response {
	body, err := codec.MarshalJSON(msg)
	require.NoError(t, err)
	res, err := http.Post(f.server.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func decodeJSON(t *testing.T, res *http.Response) map[string]any {
	var payload map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	return payload
}

func TestWeb_Command_Is_Acknowledged(t *testing.T) {
	req := require.New(t)
	f := setup(t, time.Minute)
	cmd := domain.NewCommand("actor", domain.CreateTask{ID: domain.NewTaskID(), Title: "Wash my car"})

	// When
	res := f.post(t, "/command", mustEncode(codec.EncodeCommand(cmd)))

	// Then
	req.Equal(http.StatusOK, res.StatusCode)
	var buf bytes.Buffer
	_, err := buf.ReadFrom(res.Body)
	req.NoError(err)
	msg, err := codec.UnmarshalJSON(buf.Bytes())
	req.NoError(err)
	ack, err := codec.DecodeAck(msg)
	req.NoError(err)
	req.Equal(domain.Accepted(cmd.ID), ack)
}

func TestWeb_Malformed_Body_Is_Bad_Request(t *testing.T) {
	req := require.New(t)
	f := setup(t, time.Minute)

	res, err := http.Post(f.server.URL+"/command", "application/json", bytes.NewBufferString("{not json"))
	req.NoError(err)
	defer func() { _ = res.Body.Close() }()

	req.Equal(http.StatusBadRequest, res.StatusCode)
	req.NotEmpty(decodeJSON(t, res)["error"])
}

func TestWeb_Cors_Preflight(t *testing.T) {
	req := require.New(t)
	f := setup(t, time.Minute)

	// Given a preflight request from a browser
	preflight, err := http.NewRequest(http.MethodOptions, f.server.URL+"/command", nil)
	req.NoError(err)
	preflight.Header.Set("Origin", "http://localhost:3000")

	// When
	res, err := http.DefaultClient.Do(preflight)
	req.NoError(err)
	defer func() { _ = res.Body.Close() }()

	// Then
	req.Equal(http.StatusOK, res.StatusCode)
	req.Equal("http://localhost:3000", res.Header.Get("Access-Control-Allow-Origin"))
	req.Equal("true", res.Header.Get("Access-Control-Allow-Credentials"))
	req.Equal("Content-Type", res.Header.Get("Access-Control-Allow-Headers"))
}

func TestWeb_Subscription_Mirrors_Updates_Into_Redis(t *testing.T) {
	req := require.New(t)
	f := setup(t, time.Minute)
	ctx := context.Background()
	id := domain.NewTaskID()

	// Given a subscription to the Task entities
	res := f.post(t, "/subscription/create", mustEncode(codec.EncodeTopic(domain.NewTopic("actor", domain.TopicTarget{Type: domain.TaskType}))))
	req.Equal(http.StatusOK, res.StatusCode)
	created := decodeJSON(t, res)
	path := created["path"].(string)
	req.Equal("subscription:"+created["id"].(string), path)

	// When a task is created
	f.post(t, "/command", mustEncode(codec.EncodeCommand(domain.NewCommand("actor", domain.CreateTask{ID: id, Title: "Reset wall clock"}))))

	// Then the new state lands in the subscription list
	req.Eventually(func() bool {
		n, err := f.redis.LLen(ctx, path).Result()
		return err == nil && n == 1
	}, 2*time.Second, 10*time.Millisecond)
	data, err := f.redis.LIndex(ctx, path, 0).Result()
	req.NoError(err)
	msg, err := codec.UnmarshalJSON([]byte(data))
	req.NoError(err)
	update, err := codec.DecodeUpdate(msg)
	req.NoError(err)
	req.Equal([]domain.Task{{ID: id, Title: "Reset wall clock", Version: 1}}, update.Tasks)

	// And the subscription can be kept up then cancelled
	subscription := domain.Subscription{ID: uuid.MustParse(created["id"].(string))}
	req.Equal(http.StatusOK, f.post(t, "/subscription/keep-up", mustEncode(codec.EncodeSubscription(subscription))).StatusCode)
	req.Equal(http.StatusOK, f.post(t, "/subscription/cancel", mustEncode(codec.EncodeSubscription(subscription))).StatusCode)
	req.Equal(http.StatusNotFound, f.post(t, "/subscription/keep-up", mustEncode(codec.EncodeSubscription(subscription))).StatusCode)
}

func TestWeb_Unknown_Subscription_Is_Not_Found(t *testing.T) {
	req := require.New(t)
	f := setup(t, time.Minute)
	unknown := domain.Subscription{ID: uuid.New()}

	req.Equal(http.StatusNotFound, f.post(t, "/subscription/keep-up", mustEncode(codec.EncodeSubscription(unknown))).StatusCode)
	req.Equal(http.StatusNotFound, f.post(t, "/subscription/cancel", mustEncode(codec.EncodeSubscription(unknown))).StatusCode)
}

func TestWeb_Query_Result_Is_Stored(t *testing.T) {
	req := require.New(t)
	f := setup(t, time.Minute)
	ctx := context.Background()
	id := domain.NewTaskID()

	// Given a created task
	f.post(t, "/command", mustEncode(codec.EncodeCommand(domain.NewCommand("actor", domain.CreateTask{ID: id, Title: "Wash my car"}))))

	// When it is queried until the projection caught up
	query := domain.NewQuery("actor", id)
	var payload map[string]any
	req.Eventually(func() bool {
		res := f.post(t, "/query", mustEncode(codec.EncodeQuery(query)))
		if res.StatusCode != http.StatusOK {
			return false
		}
		payload = decodeJSON(t, res)
		return payload["count"] == float64(1)
	}, 2*time.Second, 10*time.Millisecond)

	// Then the response can be read back from its path
	req.Equal("query:"+query.ID.String(), payload["path"])
	data, err := f.redis.Get(ctx, payload["path"].(string)).Result()
	req.NoError(err)
	msg, err := codec.UnmarshalJSON([]byte(data))
	req.NoError(err)
	response, err := codec.DecodeQueryResponse(msg)
	req.NoError(err)
	req.Equal([]domain.Task{{ID: id, Title: "Wash my car", Version: 1}}, response.Tasks)
	ttl, err := f.redis.TTL(ctx, payload["path"].(string)).Result()
	req.NoError(err)
	req.Positive(ttl)
}

func TestWeb_Reap_Cancels_Stale_Subscriptions(t *testing.T) {
	req := require.New(t)
	f := setup(t, time.Millisecond)
	ctx := context.Background()

	// Given a subscription nobody keeps up
	sub, err := f.bridge.Create(ctx, domain.NewTopic("actor", domain.TopicTarget{Type: domain.TaskCreatedType}))
	req.NoError(err)
	time.Sleep(5 * time.Millisecond)

	// When
	reaped := f.bridge.Reap(ctx)

	// Then
	req.Equal(1, reaped)
	req.Error(f.bridge.KeepUp(ctx, sub.ID))
}

func TestWeb_Failed_Mirroring_Cancels_Subscription(t *testing.T) {
	req := require.New(t)
	f := setup(t, time.Minute)
	ctx := context.Background()

	// Given a bridged subscription
	sub, err := f.bridge.Create(ctx, domain.NewTopic("actor", domain.TopicTarget{Type: domain.TaskCreatedType}))
	req.NoError(err)
	req.NoError(f.bridge.KeepUp(ctx, sub.ID))

	// And Redis goes away
	f.closeRedis()

	// When an update has to be mirrored
	res := f.post(t, "/command", mustEncode(codec.EncodeCommand(domain.NewCommand("actor", domain.CreateTask{ID: domain.NewTaskID(), Title: "Wash my car"}))))
	req.Equal(http.StatusOK, res.StatusCode)

	// Then the subscription is dropped instead of silently kept alive
	req.Eventually(func() bool {
		return errors.Is(f.bridge.KeepUp(ctx, sub.ID), errors.ErrSubscriptionNotFound)
	}, 2*time.Second, 10*time.Millisecond)
	_, ok := f.bc.Registry().Lookup(sub.ID)
	req.False(ok)
}

func TestWeb_Reused_Topic_Is_Conflict(t *testing.T) {
	req := require.New(t)
	f := setup(t, time.Minute)
	topic := mustEncode(codec.EncodeTopic(domain.NewTopic("actor", domain.TopicTarget{Type: domain.TaskType})))

	req.Equal(http.StatusOK, f.post(t, "/subscription/create", topic).StatusCode)
	req.Equal(http.StatusConflict, f.post(t, "/subscription/create", topic).StatusCode)
}

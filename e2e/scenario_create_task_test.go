package e2e

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tasks-lab/domain"
	"tasks-lab/grpc/client"
)

var errObserved = errors.New("observed")

type testCreateTaskSuite struct {
	BaseGrpcSuite
}

func TestCreateTaskSuite(t *testing.T) {
	suite.Run(t, &testCreateTaskSuite{})
}

func (s *testCreateTaskSuite) TestCreateTaskFlow() {
	actor := domain.NewUserID()
	taskID := domain.NewTaskID()
	cmd := domain.NewCommand(actor, domain.CreateTask{ID: taskID, Title: "Wash my car"})
	var sub domain.Subscription

	// --- STEP 1: SUBSCRIBE TO OUR OWN COMMAND ---
	s.Run("Step 1: Subscribe to TaskCreated of the command", func() {
		s.WithTasks("Subscribe", func(ctx context.Context, c *client.Client) {
			var err error
			sub, err = c.Subscribe(ctx, domain.NewTopic(actor, domain.TopicTarget{Type: domain.TaskCreatedType, CommandID: &cmd.ID}))
			s.Require().NoError(err)
		})
	})

	// --- STEP 2: POST AND OBSERVE ---
	s.Run("Step 2: Post CreateTask and observe TaskCreated", func() {
		s.WithTasks("Post and observe", func(ctx context.Context, c *client.Client) {
			ack, err := c.Post(ctx, cmd)
			s.Require().NoError(err)
			s.Require().Equal(domain.StatusOK, ack.Status, ack.Error)

			var created domain.TaskCreated
			err = c.Activate(ctx, sub, func(update domain.SubscriptionUpdate) error {
				for _, env := range update.Events {
					if evt, ok := env.Message.(domain.TaskCreated); ok {
						created = evt
						return errObserved
					}
				}
				return nil
			})
			s.Require().ErrorIs(err, errObserved)
			s.Require().Equal(domain.TaskCreated{ID: taskID, Title: "Wash my car"}, created)
			s.cancelled(ctx, c, sub)
		})
	})

	// --- STEP 3: READ BACK ---
	s.Run("Step 3: Query the task by id", func() {
		s.WithTasks("Query", func(ctx context.Context, c *client.Client) {
			response, err := c.Read(ctx, domain.NewQuery(actor, taskID))
			s.Require().NoError(err)
			s.Require().Len(response.Tasks, 1)
			s.Require().Equal("Wash my car", response.Tasks[0].Title)
		})
	})

	// --- STEP 4: DUPLICATE IS REJECTED ---
	s.Run("Step 4: A second CreateTask is rejected", func() {
		s.WithTasks("Duplicate", func(ctx context.Context, c *client.Client) {
			duplicate := domain.NewCommand(actor, domain.CreateTask{ID: taskID, Title: "Wash my car again"})
			rejections, err := c.Subscribe(ctx, domain.NewTopic(actor, domain.TopicTarget{Type: domain.TaskAlreadyExistsType, CommandID: &duplicate.ID}))
			s.Require().NoError(err)

			_, err = c.Post(ctx, duplicate)
			s.Require().NoError(err)

			err = c.Activate(ctx, rejections, func(update domain.SubscriptionUpdate) error {
				for _, env := range update.Events {
					if env.Context.Rejection {
						return errObserved
					}
				}
				return nil
			})
			s.Require().ErrorIs(err, errObserved)
			s.cancelled(ctx, c, rejections)
		})
	})
}

// cancelled cancels a subscription that may already be gone
// because its subscriber left Activate.
func (s *testCreateTaskSuite) cancelled(ctx context.Context, c *client.Client, sub domain.Subscription) {
	if err := c.Cancel(ctx, sub); status.Code(err) != codes.NotFound {
		s.Require().NoError(err)
	}
}

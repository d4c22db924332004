package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInlinePublisher_RunsJobs(t *testing.T) {
	var handled atomic.Int32
	var gotType atomic.Value

	p := NewInlinePublisher(HandlerFunc(func(ctx context.Context, job Job) error {
		time.Sleep(20 * time.Millisecond)
		gotType.Store(job.Type)
		handled.Add(1)
		return nil
	}), zap.NewNop())

	job, err := NewJob(JobNotifyAdmins, map[string]string{"title": "New booking"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Publish(ctx, job))
	require.NoError(t, p.Publish(ctx, job))
	// cancelling the request must not cancel the job
	cancel()

	require.NoError(t, p.Close())
	assert.Equal(t, int32(2), handled.Load())
	assert.Equal(t, JobNotifyAdmins, gotType.Load())
}

func TestInlinePublisher_FailureIsSwallowed(t *testing.T) {
	p := NewInlinePublisher(HandlerFunc(func(ctx context.Context, job Job) error {
		return errors.New("smtp down")
	}), zap.NewNop())

	job, err := NewJob(JobTicketIssued, struct{}{})
	require.NoError(t, err)
	assert.NoError(t, p.Publish(context.Background(), job))
	assert.NoError(t, p.Close())
}

func TestJob_Decode(t *testing.T) {
	type payload struct {
		TicketID string `json:"ticketId"`
	}

	job, err := NewJob(JobTicketIssued, payload{TicketID: "t1"})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)

	var got payload
	require.NoError(t, job.Decode(&got))
	assert.Equal(t, "t1", got.TicketID)

	job.Payload = []byte("{")
	assert.Error(t, job.Decode(&got))
}

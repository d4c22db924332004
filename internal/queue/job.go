// Package queue moves side effects (mail, notifications) out of the request
// path. Jobs go to RabbitMQ when a broker is configured, otherwise they run
// on a background goroutine of the same process.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"event-ticketing/pkg/observability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type JobType string

const (
	JobTicketIssued JobType = "ticket.issued"
	JobNotifyAdmins JobType = "notify.admins"
	JobNotifyAll    JobType = "notify.all"
)

type Job struct {
	ID         string          `json:"id"`
	Type       JobType         `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
}

func NewJob(t JobType, payload any) (Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	return Job{ID: uuid.NewString(), Type: t, Payload: data, EnqueuedAt: time.Now()}, nil
}

// Decode unmarshals the payload into v.
func (j Job) Decode(v any) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", j.Type, err)
	}
	return nil
}

type Publisher interface {
	Publish(ctx context.Context, job Job) error
	Close() error
}

type Handler interface {
	Handle(ctx context.Context, job Job) error
}

type HandlerFunc func(ctx context.Context, job Job) error

func (f HandlerFunc) Handle(ctx context.Context, job Job) error { return f(ctx, job) }

// process runs h once. Failures are logged and counted, never retried.
func process(ctx context.Context, h Handler, job Job, log *zap.Logger) error {
	err := h.Handle(ctx, job)
	if err != nil {
		observability.JobsProcessed.WithLabelValues(string(job.Type), "error").Inc()
		log.Error("Job failed",
			zap.Error(err),
			zap.String("job_id", job.ID),
			zap.String("type", string(job.Type)),
		)
		return err
	}
	observability.JobsProcessed.WithLabelValues(string(job.Type), "ok").Inc()
	log.Debug("Job done", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
	return nil
}

package queue

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const inlineJobTimeout = 30 * time.Second

// InlinePublisher runs each job on its own goroutine after Publish returns.
type InlinePublisher struct {
	handler Handler
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewInlinePublisher(handler Handler, log *zap.Logger) *InlinePublisher {
	return &InlinePublisher{handler: handler, log: log.With(zap.String("component", "queue.inline"))}
}

func (p *InlinePublisher) Publish(ctx context.Context, job Job) error {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		// detach from the request so the job outlives it
		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), inlineJobTimeout)
		defer cancel()
		_ = process(jobCtx, p.handler, job, p.log)
	}()
	return nil
}

// Close waits for jobs already started.
func (p *InlinePublisher) Close() error {
	p.wg.Wait()
	return nil
}

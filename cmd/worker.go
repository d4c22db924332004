package cmd

import (
	"context"

	"event-ticketing/internal/queue"

	"go.uber.org/zap"
)

// Worker consumes side-effect jobs until ctx is done. A nil consumer means
// jobs run in-process and there is nothing to do.
func Worker(ctx context.Context, consumer *queue.Consumer, log *zap.Logger) error {
	if consumer == nil {
		log.Info("No broker configured, side effects run in-process")
		<-ctx.Done()
		return nil
	}
	return consumer.Run(ctx)
}

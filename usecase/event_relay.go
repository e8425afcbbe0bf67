package usecase

import (
	"context"
	"fmt"
	"time"

	"viewtube/domain/model"
	"viewtube/domain/repository"
	"viewtube/infrastructure/logger"

	"golang.org/x/sync/errgroup"
)

// VideoEventRelay forwards engine events to every configured sink.
type VideoEventRelay struct {
	sinks   []repository.IVideoEventSink
	timeout time.Duration
}

func NewVideoEventRelay(timeout time.Duration, sinks ...repository.IVideoEventSink) *VideoEventRelay {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &VideoEventRelay{sinks: sinks, timeout: timeout}
}

func (r *VideoEventRelay) SinkCount() int {
	return len(r.sinks)
}

// Run drains events until ctx is done or the channel is closed. Sink failures
// are logged and do not stop the relay.
func (r *VideoEventRelay) Run(ctx context.Context, events <-chan model.VideoEvent) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			if err := r.Dispatch(ctx, evt); err != nil {
				logger.GetLogger().WithField("event_id", evt.ID).WithField("error", err).Warn("video event relay failed")
			}
		}
	}
}

// Dispatch publishes one event to all sinks concurrently and returns the first failure.
func (r *VideoEventRelay) Dispatch(ctx context.Context, evt model.VideoEvent) error {
	var g errgroup.Group
	for _, sink := range r.sinks {
		sink := sink
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()
			if err := sink.PublishVideoEvent(sctx, evt); err != nil {
				return fmt.Errorf("failed to publish to %s: %w", sink.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

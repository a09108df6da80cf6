package funpay

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Runner polls the gateway update feed and emits marketplace events.
type Runner struct {
	client *Client
	delay  time.Duration
	logger *zap.Logger
}

func NewRunner(client *Client, delay time.Duration, logger *zap.Logger) *Runner {
	return &Runner{
		client: client,
		delay:  delay,
		logger: logger,
	}
}

// Events starts the poll loop. The channel is unbuffered: the consumer
// processes one event to completion before the next is handed over, which
// is what keeps session mutation single-threaded.
func (r *Runner) Events(ctx context.Context) <-chan Event {
	ch := make(chan Event)

	go func() {
		defer close(ch)
		var cursor string
		for {
			events, next, err := r.client.getUpdates(ctx, cursor)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				r.logger.Error("Update poll failed", zap.Error(err))
			} else {
				cursor = next
				for _, ev := range events {
					select {
					case ch <- ev:
					case <-ctx.Done():
						return
					}
				}
			}

			select {
			case <-time.After(r.delay):
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}

package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// LocalBus delivers events to a handler on background goroutines in this process
type LocalBus struct {
	handler Handler
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewLocalBus(handler Handler, timeout time.Duration) *LocalBus {
	return &LocalBus{handler: handler, timeout: timeout}
}

// Publish schedules the handler and returns immediately. The request context
// is not reused because it ends when the triggering request returns.
func (b *LocalBus) Publish(_ context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		if err := b.handler(ctx, e); err != nil {
			log.WithFields(log.Fields{
				"type":      e.Type,
				"recipient": e.RecipientID,
			}).WithError(err).Warn("event handler failed")
		}
	}()
	return nil
}

// Wait blocks until all scheduled handlers have returned
func (b *LocalBus) Wait() {
	b.wg.Wait()
}

package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingCompleter struct {
	calls atomic.Int32
	err   error
}

func (c *countingCompleter) CompleteEnded(context.Context) (int64, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestScheduler_SweepsUntilCancelled(t *testing.T) {
	games := &countingCompleter{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		NewScheduler(games, 5*time.Millisecond).Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return games.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_KeepsRunningAfterError(t *testing.T) {
	games := &countingCompleter{err: errors.New("db down")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go NewScheduler(games, 5*time.Millisecond).Run(ctx)

	assert.Eventually(t, func() bool { return games.calls.Load() >= 2 }, time.Second, time.Millisecond)
}

func TestNewScheduler_DefaultsInterval(t *testing.T) {
	assert.Equal(t, time.Minute, NewScheduler(&countingCompleter{}, 0).interval)
}

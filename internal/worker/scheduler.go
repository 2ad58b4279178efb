// Package worker runs periodic maintenance jobs.
package worker

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// GameCompleter closes games whose end time has passed
type GameCompleter interface {
	CompleteEnded(ctx context.Context) (int64, error)
}

// Scheduler completes ended games on a fixed interval
type Scheduler struct {
	games    GameCompleter
	interval time.Duration
}

func NewScheduler(games GameCompleter, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{games: games, interval: interval}
}

// Run ticks until ctx is cancelled. The first sweep runs immediately.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.WithField("interval", s.interval.String()).Info("⏰ Game scheduler started")
	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info("⏰ Game scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	n, err := s.games.CompleteEnded(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).Warn("complete ended games failed")
		}
		return
	}
	if n > 0 {
		log.WithField("games", n).Info("🏁 Completed ended games")
	}
}

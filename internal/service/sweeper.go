package service

import (
	"context"
	"sync"
	"time"

	"github.com/SridharA16/Ghostprotocol/pkg/logger"
)

// Sweeper drives the reach-scheduled-date transition: a background
// ticker that periodically asks the service to publish due posts. The
// value of a tick is idempotent, so overlapping deployments running
// their own sweepers are safe.
type Sweeper struct {
	svc         ContentService
	interval    time.Duration
	onPublished func(count int)
	stop        chan struct{}
	wg          sync.WaitGroup
}

// NewSweeper creates a Sweeper that runs every interval. onPublished,
// if non-nil, is called after each tick that published at least one
// post; callers use it to feed metrics without this package depending
// on the transport layer.
func NewSweeper(svc ContentService, interval time.Duration, onPublished func(count int)) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		svc:         svc,
		interval:    interval,
		onPublished: onPublished,
		stop:        make(chan struct{}),
	}
}

// Start launches the background sweep goroutine.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
	logger.GetLogger().Info().Dur("interval", s.interval).Msg("scheduled-post sweeper started")
}

// Stop halts the sweeper and waits for an in-flight tick to finish.
func (s *Sweeper) Stop() {
	close(s.stop)
	s.wg.Wait()
	logger.GetLogger().Info().Msg("scheduled-post sweeper stopped")
}

func (s *Sweeper) tick() {
	published, err := s.svc.SweepScheduled(context.Background())
	if err != nil {
		logger.GetLogger().Error().Err(err).Msg("scheduled-post sweep failed")
		return
	}
	if published > 0 {
		if s.onPublished != nil {
			s.onPublished(published)
		}
		logger.GetLogger().Info().Int("published", published).Msg("scheduled posts published")
	}
}

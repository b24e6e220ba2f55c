package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tasklight/tasklight/internal/store"
)

// HousekeepingService periodically nulls out expired reset token pairs.
// This is hygiene only; token lookups filter on expiry regardless, so a
// missed sweep never extends a token's life.
type HousekeepingService struct {
	store    store.Store
	logger   *slog.Logger
	interval time.Duration

	stop     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

const defaultSweepInterval = 15 * time.Minute

func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HousekeepingService{
		store:    st,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start launches the sweep loop. One sweep runs immediately.
func (s *HousekeepingService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.sweep()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *HousekeepingService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.store.Users().ClearExpiredResetTokens(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("reset token sweep failed", slog.Any("error", err))
		return
	}
	if n > 0 {
		s.logger.Info("cleared expired reset tokens", slog.Int64("count", n))
	}
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *HousekeepingService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
	})
}

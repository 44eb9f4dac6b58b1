package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweeper removes expired download tokens.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// TokenSweeper periodically deletes expired download tokens in the background.
type TokenSweeper struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewTokenSweeper constructs the sweeper. A non-positive interval disables it.
func NewTokenSweeper(sweeper Sweeper, interval time.Duration, logger *slog.Logger) *TokenSweeper {
	return &TokenSweeper{sweeper: sweeper, interval: interval, logger: logger}
}

// Start launches the sweep loop. Calling Start twice is a no-op.
func (s *TokenSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.interval <= 0 {
		s.logger.Info("token sweeper disabled")
		return
	}
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(runCtx)
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *TokenSweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *TokenSweeper) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *TokenSweeper) sweep(ctx context.Context) {
	if _, err := s.sweeper.Sweep(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("token sweep failed", slog.String("error", err.Error()))
	}
}

package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultSweepInterval is how often the sweeper looks for expired sessions.
const DefaultSweepInterval = 30 * time.Second

// Sweeper periodically removes sessions whose inactivity deadline has
// passed. Expired sessions are already rejected lazily on access; the sweeper
// frees their capacity slots and closes their event streams even when
// nobody touches them again.
// Thread-safe: Start and Stop may be called from different goroutines.
type Sweeper struct {
	coord    *Coordinator
	log      *slog.Logger
	interval time.Duration
	ctx      context.Context    // Internal context for Stop
	cancel   context.CancelFunc // Cancels ctx
	wg       sync.WaitGroup     // Tracks the running loop
}

// NewSweeper creates a sweeper for c. A non-positive interval falls back to
// DefaultSweepInterval.
//
// Parameters:
//   - c: The coordinator whose sessions are swept
//   - interval: Time between sweeps
//
// Returns:
//   - *Sweeper: Configured sweeper ready to start
//
// Example:
//
//	sweeper := NewSweeper(coord, 30*time.Second)
//	go sweeper.Start(ctx)
//	defer sweeper.Stop()
func NewSweeper(c *Coordinator, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		coord:    c,
		log:      c.log.With("component", "sweeper"),
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start runs the sweep loop in the current goroutine until ctx is cancelled
// or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	defer s.wg.Done()

	if ctx == nil {
		ctx = s.ctx
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("sweeper started", "interval", s.interval)
	for {
		select {
		case <-ticker.C:
			s.coord.SweepExpired()
		case <-ctx.Done():
			s.log.Info("sweeper stopping", "reason", "context cancelled")
			return
		case <-s.ctx.Done():
			s.log.Info("sweeper stopping", "reason", "stopped")
			return
		}
	}
}

// Stop cancels the loop and waits for it to return.
func (s *Sweeper) Stop() {
	s.cancel()
	s.wg.Wait()
}

package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSweeperDefaults(t *testing.T) {
	c, _ := newTestCoordinator(t, Options{})

	s := NewSweeper(c, 0)
	assert.Equal(t, DefaultSweepInterval, s.interval)
	assert.NotNil(t, s.ctx)
	assert.NotNil(t, s.cancel)
}

func TestSweeperRemovesExpiredSessions(t *testing.T) {
	c, clock := newTestCoordinator(t, Options{})
	_, _ = newSession(t, c)
	keep, _ := newSession(t, c)

	sweeper := NewSweeper(c, 10*time.Millisecond)
	go sweeper.Start(context.Background())
	defer sweeper.Stop()

	clock.Advance(DefaultSessionTimeout - time.Minute)
	require.NoError(t, c.TouchActivity(keep))
	clock.Advance(2 * time.Minute)

	require.Eventually(t, func() bool {
		return c.Capacity().Active == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, err := c.GetSession(keep, "")
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), c.Stats().SessionsExpired)
}

func TestSweeperStopsOnContextCancel(t *testing.T) {
	c, _ := newTestCoordinator(t, Options{})
	sweeper := NewSweeper(c, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
	sweeper.Stop()
}

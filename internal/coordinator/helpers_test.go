package coordinator

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dreamware/pokerd/internal/broadcast"
	"github.com/dreamware/pokerd/internal/poker"
)

// fakeClock is a manually advanced clock for expiry bookkeeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// newTestCoordinator builds a coordinator on a fake clock with logging
// discarded. opts may override any field.
func newTestCoordinator(t *testing.T, opts Options) (*Coordinator, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	if opts.Now == nil {
		opts.Now = clock.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	c := New(opts)
	t.Cleanup(c.Close)
	return c, clock
}

// newSession creates a session and joins the named participants after the
// creator. It returns the session id and every participant in join order.
func newSession(t *testing.T, c *Coordinator, names ...string) (string, []poker.Participant) {
	t.Helper()
	view, creator, err := c.CreateSession("Sprint planning", "Ada", "owl")
	require.NoError(t, err)
	people := []poker.Participant{creator}
	for _, name := range names {
		p, _, err := c.Join(view.ID, name, "")
		require.NoError(t, err)
		people = append(people, p)
	}
	return view.ID, people
}

func kinds(events []broadcast.Event) []broadcast.Kind {
	out := make([]broadcast.Kind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

func mustView(t *testing.T, c *Coordinator, id, viewer string) poker.SessionView {
	t.Helper()
	view, err := c.GetSession(id, viewer)
	require.NoError(t, err)
	return view
}

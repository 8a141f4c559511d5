// Package coordinator implements the session-coordination core of pokerd.
// See doc.go for complete package documentation.
package coordinator

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dreamware/pokerd/internal/broadcast"
	"github.com/dreamware/pokerd/internal/poker"
)

// Defaults for Options.
const (
	DefaultMaxParticipants = 16
	DefaultSessionTimeout  = 10 * time.Minute
	DefaultGracePeriod     = 5 * time.Minute
	DefaultGraceWarning    = time.Minute
	DefaultDeltaMaxGap     = 5
)

// Options configures a Coordinator. Zero fields take the defaults above.
type Options struct {
	MaxSessions     int
	MaxParticipants int
	SessionTimeout  time.Duration
	GracePeriod     time.Duration
	// GraceWarning is how long before the grace deadline the warning event
	// fires. Zero or a value not shorter than GracePeriod disables it.
	GraceWarning time.Duration
	DeltaMaxGap  int

	Broadcaster *broadcast.Broadcaster
	Logger      *slog.Logger
	// Now is the clock used for activity and expiry bookkeeping. Timers
	// always run on wall time.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.MaxSessions <= 0 {
		o.MaxSessions = DefaultMaxSessions
	}
	if o.MaxParticipants <= 0 {
		o.MaxParticipants = DefaultMaxParticipants
	}
	if o.SessionTimeout <= 0 {
		o.SessionTimeout = DefaultSessionTimeout
	}
	if o.GracePeriod <= 0 {
		o.GracePeriod = DefaultGracePeriod
	}
	if o.GraceWarning < 0 {
		o.GraceWarning = 0
	}
	if o.DeltaMaxGap <= 0 {
		o.DeltaMaxGap = DefaultDeltaMaxGap
	}
	if o.Broadcaster == nil {
		o.Broadcaster = broadcast.New(broadcast.DefaultBufferSize, broadcast.DefaultHistorySize)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Coordinator owns every live session.
//
// Locking: mu guards the session table, the capacity guard and the system
// event sequence. Each entry has its own mutex guarding its session. The
// order is always mu before entry.mu; code holding an entry lock never
// takes mu. Events are published while the entry lock is held, which keeps
// per-session delivery in version order.
type Coordinator struct {
	mu        sync.Mutex
	sessions  map[string]*entry
	capacity  *CapacityGuard
	systemSeq uint64

	opts   Options
	events *broadcast.Broadcaster
	log    *slog.Logger
	now    func() time.Time
	stats  Stats
}

// entry is one slot of the session table.
type entry struct {
	mu      sync.Mutex
	session *poker.Session
	// removed is set once the session has ended; the slot is then released
	// from the table as soon as the entry lock is dropped.
	removed bool
	// graceToken identifies the live grace period. Timers carry the token
	// they were armed with and do nothing if it has moved on.
	graceToken uint64
	graceTimer *time.Timer
	warnTimer  *time.Timer
}

// New creates a coordinator.
func New(opts Options) *Coordinator {
	opts = opts.withDefaults()
	return &Coordinator{
		sessions: make(map[string]*entry),
		capacity: NewCapacityGuard(opts.MaxSessions),
		opts:     opts,
		events:   opts.Broadcaster,
		log:      opts.Logger,
		now:      opts.Now,
	}
}

// Broadcaster returns the broadcaster events are published on.
func (c *Coordinator) Broadcaster() *broadcast.Broadcaster {
	return c.events
}

// Capacity reports the capacity guard's status.
func (c *Coordinator) Capacity() CapacityStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity.Status()
}

// Stats returns a snapshot of the operation counters.
func (c *Coordinator) Stats() StatsSnapshot {
	snap := c.stats.snapshot()
	snap.EventsDropped = c.events.Dropped()
	c.mu.Lock()
	snap.ActiveSessions = len(c.sessions)
	c.mu.Unlock()
	return snap
}

// Close ends every session and shuts the broadcaster down.
func (c *Coordinator) Close() {
	c.mu.Lock()
	for id, e := range c.sessions {
		e.mu.Lock()
		if !e.removed {
			c.finish(e, ReasonShutdown)
		}
		e.mu.Unlock()
		delete(c.sessions, id)
		c.capacity.Release()
	}
	c.mu.Unlock()
	c.events.Close()
}

// lookup returns the table entry for id.
func (c *Coordinator) lookup(id string) (*entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.sessions[id]
	if !ok {
		return nil, poker.ErrSessionNotFound
	}
	return e, nil
}

// withSession runs fn with the session's lock held. Sessions that have
// ended or passed their deadline are rejected before fn runs. If fn ends the
// session, its table slot is released after the lock is dropped.
func (c *Coordinator) withSession(id string, fn func(e *entry) error) error {
	e, err := c.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return poker.ErrSessionNotFound
	}
	if e.session.ExpiredAt(c.now()) {
		e.mu.Unlock()
		return poker.ErrSessionExpired
	}
	err = fn(e)
	removed := e.removed
	e.mu.Unlock()

	if removed {
		c.release(id, e)
	}
	return err
}

// commit records a mutation: bump the version, verify invariants and
// publish the change. Must be called with e.mu held after the session has
// reached a consistent state.
func (c *Coordinator) commit(e *entry, kind broadcast.Kind, payload any) {
	if e.removed {
		return
	}
	s := e.session
	s.Bump(c.now(), c.opts.SessionTimeout)
	if err := s.CheckInvariants(); err != nil {
		c.stats.InvariantViolations.Add(1)
		c.log.Error("session invariant violated, expiring session",
			"session_id", s.ID, "version", s.Version, "error", err)
		c.finish(e, ReasonInvariantViolation)
		return
	}
	c.publish(s, kind, payload)
}

// publish sends an event for the session's current version. Must be called
// with the entry lock held.
func (c *Coordinator) publish(s *poker.Session, kind broadcast.Kind, payload any) {
	c.events.Publish(s.ID, broadcast.Event{
		Kind:      kind,
		SessionID: s.ID,
		Version:   s.Version,
		At:        c.now(),
		Payload:   payload,
	})
}

// finish ends the session held by e: it cancels any grace period, marks the
// session expired and publishes the final event. The caller must hold e.mu
// and release the table slot afterwards.
func (c *Coordinator) finish(e *entry, reason string) {
	if e.removed {
		return
	}
	s := e.session
	c.cancelGrace(e)
	s.Grace = nil
	s.Status = poker.StatusExpired
	s.Version++
	e.removed = true

	if reason == ReasonDestroyed {
		c.stats.SessionsDestroyed.Add(1)
	} else {
		c.stats.SessionsExpired.Add(1)
	}
	c.log.Info("session ended", "session_id", s.ID, "reason", reason, "version", s.Version)
	c.publish(s, broadcast.KindSessionEnded, SessionEnded{Reason: reason})
}

// release removes an ended session from the table and frees its capacity
// slot. It must not be called with any entry lock held.
func (c *Coordinator) release(id string, e *entry) {
	c.mu.Lock()
	released := c.releaseLocked(id, e)
	c.mu.Unlock()
	if released {
		c.events.CloseTopic(id)
	}
}

func (c *Coordinator) releaseLocked(id string, e *entry) bool {
	if cur, ok := c.sessions[id]; !ok || cur != e {
		return false
	}
	delete(c.sessions, id)
	c.capacity.Release()
	c.publishCapacityLocked(ReasonCapacityReleased)
	return true
}

// publishCapacityLocked announces the capacity status on the system topic.
// Must be called with c.mu held.
func (c *Coordinator) publishCapacityLocked(reason string) {
	c.systemSeq++
	c.events.Publish(broadcast.SystemTopic, broadcast.Event{
		Kind:    broadcast.KindCapacityChanged,
		Version: c.systemSeq,
		At:      c.now(),
		Payload: CapacityChanged{CapacityStatus: c.capacity.Status(), Reason: reason},
	})
}

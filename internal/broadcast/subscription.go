package broadcast

import "sync/atomic"

// Subscription is one client's bounded queue on a topic.
type Subscription struct {
	id            uint64
	Topic         string
	ParticipantID string

	ch      chan Event
	b       *Broadcaster
	closed  bool // guarded by b.mu
	dropped atomic.Uint64
}

// C returns the queue. It is closed when the subscription ends.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Drain returns every event currently pending without blocking.
func (s *Subscription) Drain() []Event {
	var out []Event
	for {
		select {
		case ev, ok := <-s.ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

// Dropped returns how many events this subscriber lost to overflow.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// offer enqueues ev, evicting the oldest pending events while the queue is
// full. Must be called with b.mu held so that no other sender competes.
func (s *Subscription) offer(ev Event) uint64 {
	if s.closed {
		return 0
	}
	var evicted uint64
	for {
		select {
		case s.ch <- ev:
			if evicted > 0 {
				s.dropped.Add(evicted)
			}
			return evicted
		default:
		}
		select {
		case <-s.ch:
			evicted++
		default:
		}
	}
}

func (s *Subscription) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

package broadcast

import (
	"sync"
	"sync/atomic"
	"time"
)

// SystemTopic carries process-wide events such as capacity changes.
const SystemTopic = ""

// Kind names a published change.
type Kind string

const (
	KindParticipantJoined       Kind = "participant_joined"
	KindParticipantLeft         Kind = "participant_left"
	KindParticipantKicked       Kind = "participant_kicked"
	KindParticipantDisconnected Kind = "participant_disconnected"
	KindParticipantReconnected  Kind = "participant_reconnected"
	KindVoteCast                Kind = "vote_cast"
	KindVotesRevealed           Kind = "votes_revealed"
	KindRoundStarted            Kind = "round_started"
	KindRoundReset              Kind = "round_reset"
	KindFacilitatorChanged      Kind = "facilitator_changed"
	KindGraceStarted            Kind = "grace_period_started"
	KindGraceWarning            Kind = "grace_period_warning"
	KindGraceEnded              Kind = "grace_period_ended"
	KindSessionEnded            Kind = "session_ended"
	KindCapacityChanged         Kind = "capacity_changed"
)

// Event is one change fanned out to subscribers. Version is the session's
// state version after the change; for the system topic it is a sequence.
type Event struct {
	Kind      Kind      `json:"kind"`
	SessionID string    `json:"session_id,omitempty"`
	Version   uint64    `json:"version"`
	At        time.Time `json:"at"`
	Payload   any       `json:"payload,omitempty"`
}

// Default sizes.
const (
	DefaultBufferSize  = 100
	DefaultHistorySize = 32
)

// Broadcaster fans events out to per-subscriber bounded queues. Publishing
// never blocks: a full queue loses its oldest pending event to make room.
// It also keeps the most recent events of every topic so that reconnecting
// clients can be sent a delta instead of a full snapshot.
type Broadcaster struct {
	mu          sync.Mutex
	topics      map[string]*topic
	nextID      uint64
	bufferSize  int
	historySize int
	closed      bool
	dropped     atomic.Uint64
}

type topic struct {
	subs    map[uint64]*Subscription
	history []Event
}

// New creates a broadcaster. Non-positive sizes fall back to the defaults.
func New(bufferSize, historySize int) *Broadcaster {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &Broadcaster{
		topics:      make(map[string]*topic),
		bufferSize:  bufferSize,
		historySize: historySize,
	}
}

func (b *Broadcaster) topicLocked(name string) *topic {
	t, ok := b.topics[name]
	if !ok {
		t = &topic{subs: make(map[uint64]*Subscription)}
		b.topics[name] = t
	}
	return t
}

// Subscribe attaches a new queue to topicName. The returned subscription
// starts empty; earlier events are only reachable through History.
func (b *Broadcaster) Subscribe(topicName, participantID string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:            b.nextID,
		Topic:         topicName,
		ParticipantID: participantID,
		ch:            make(chan Event, b.bufferSize),
		b:             b,
	}
	if b.closed {
		sub.closed = true
		close(sub.ch)
		return sub
	}
	b.topicLocked(topicName).subs[sub.id] = sub
	return sub
}

// Unsubscribe detaches sub and closes its channel. It is idempotent.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.topics[sub.Topic]; ok {
		delete(t.subs, sub.id)
	}
	sub.closeLocked()
}

// Publish records ev in the topic history and enqueues it for every
// subscriber. Callers publishing for one session must serialise their calls
// to keep per-session ordering; the coordinator does so by publishing under
// the session lock.
func (b *Broadcaster) Publish(topicName string, ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	t := b.topicLocked(topicName)
	t.history = append(t.history, ev)
	if over := len(t.history) - b.historySize; over > 0 {
		t.history = append(t.history[:0:0], t.history[over:]...)
	}
	for _, sub := range t.subs {
		if n := sub.offer(ev); n > 0 {
			b.dropped.Add(n)
		}
	}
}

// History returns the retained events of topicName newer than version
// after. ok is false when the retained window does not reach back far enough
// to cover every version since after.
func (b *Broadcaster) History(topicName string, after uint64) (events []Event, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, exists := b.topics[topicName]
	if !exists || len(t.history) == 0 {
		return nil, false
	}
	for _, ev := range t.history {
		if ev.Version > after {
			events = append(events, ev)
		}
	}
	if len(events) == 0 {
		return nil, true
	}
	want := after + 1
	for _, ev := range events {
		if ev.Version != want {
			return nil, false
		}
		want++
	}
	return events, true
}

// CloseTopic closes every subscription on topicName and forgets its history.
func (b *Broadcaster) CloseTopic(topicName string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[topicName]
	if !ok {
		return
	}
	for _, sub := range t.subs {
		sub.closeLocked()
	}
	delete(b.topics, topicName)
}

// Close shuts the broadcaster down. Later publishes are ignored and later
// subscriptions are returned already closed.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for name, t := range b.topics {
		for _, sub := range t.subs {
			sub.closeLocked()
		}
		delete(b.topics, name)
	}
}

// Subscribers returns the number of live subscriptions on topicName.
func (b *Broadcaster) Subscribers(topicName string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.topics[topicName]; ok {
		return len(t.subs)
	}
	return 0
}

// Dropped returns how many events were evicted from full queues in total.
func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}

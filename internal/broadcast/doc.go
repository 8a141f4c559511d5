// Package broadcast fans session changes out to connected clients.
//
// Every subscriber owns a bounded queue (DefaultBufferSize events). Publish
// never blocks the publisher: when a queue is full its oldest pending event
// is evicted so the newest state always gets through. Each event carries the
// session's state version, so a client that notices a gap can ask for
// reconciliation.
//
// The broadcaster also retains the last few events of every topic. The
// reconciliation path uses History to answer small version gaps with a
// delta instead of a full snapshot.
//
//	sub := b.Subscribe(sessionID, participantID)
//	defer b.Unsubscribe(sub)
//	for ev := range sub.C() {
//	    send(ev)
//	}
//
// Ordering: events published for one topic reach each queue in publish
// order. Publishers of one session must serialise their calls.
package broadcast

// Package coordinator implements the session-coordination core of pokerd:
// the registry of live planning-poker sessions, their membership and voting
// state machines, facilitator failover, and the reconciliation of clients
// that come back after a dropped connection.
//
// # Overview
//
// All state lives in memory inside a single Coordinator. Nothing is
// persisted; a restart loses every session. The transport layer (HTTP and
// websocket handlers in cmd/pokerd) calls the request-style methods below
// and streams the events they publish to attached clients.
//
// # Architecture
//
//	┌──────────────────────────────────────────┐
//	│               COORDINATOR                │
//	├──────────────────────────────────────────┤
//	│                                          │
//	│  ┌────────────────────────────────────┐  │
//	│  │  Session Registry + Capacity Guard │  │
//	│  │  - create / destroy / expire       │  │
//	│  │  - at most 3 live sessions         │  │
//	│  └────────────────────────────────────┘  │
//	│  ┌────────────────────────────────────┐  │
//	│  │  Membership                        │  │
//	│  │  - join / leave / evict            │  │
//	│  │  - facilitator transfer            │  │
//	│  │  - presence                        │  │
//	│  └────────────────────────────────────┘  │
//	│  ┌────────────────────────────────────┐  │
//	│  │  Voting                            │  │
//	│  │  - start / vote / reveal / reset   │  │
//	│  └────────────────────────────────────┘  │
//	│  ┌────────────────────────────────────┐  │
//	│  │  Grace Period + Sweeper            │  │
//	│  │  - facilitator failover timers     │  │
//	│  │  - inactivity expiry               │  │
//	│  └────────────────────────────────────┘  │
//	│  ┌────────────────────────────────────┐  │
//	│  │  Reconciliation                    │  │
//	│  │  - no change / delta / snapshot    │  │
//	│  └────────────────────────────────────┘  │
//	│                    │                     │
//	└────────────────────┼─────────────────────┘
//	                     ▼
//	          internal/broadcast (fan-out)
//
// # Session Lifecycle
//
//	           StartRound           RevealVotes
//	 Waiting ─────────────▶ Voting ─────────────▶ Revealed
//	    ▲                                            │
//	    └──────────── ResetRound / StartRound ───────┘
//
//	 Waiting/Voting/Revealed ── facilitator drops ──▶ Paused
//	 Paused ── facilitator returns ──▶ prior status
//	 Paused ── deadline, someone connected ──▶ prior status, new facilitator
//	 Paused ── deadline, nobody connected ──▶ Expired
//	 any ── inactivity, destroy, last leave ──▶ Expired
//
// Every mutation bumps the session's state version by exactly one and
// publishes one event carrying the new version. Clients use the version to
// detect missed events and ask Reconcile for either the missing events or a
// full snapshot.
//
// # Concurrency and Synchronization
//
// Lock Granularity:
//   - Coordinator.mu guards the session table, the capacity guard and the
//     system event sequence; it is held only briefly
//   - each session has its own mutex; operations on one session are
//     serialized while different sessions proceed independently
//   - lock order is always table before session
//
// Goroutine Patterns:
//   - grace-period deadlines and warnings run on time.AfterFunc goroutines
//     that take the session lock and check a token before acting
//   - the Sweeper runs a ticker loop with context cancellation
//
// Ordering Guarantees:
//   - events are published while the session lock is held, so subscribers
//     see each session's events in version order
//   - publishing never blocks; slow clients lose their oldest queued events
//
// # Error Handling
//
// Expected conditions are returned as the sentinel errors of package poker
// (poker.ErrSessionFull, poker.ErrForbidden, ...) and never change state.
// A broken structural invariant is not returned to the caller: it is logged
// and the session is expired.
//
// # Configuration
//
//	MaxSessions:     3       // Capacity guard ceiling
//	MaxParticipants: 16      // Per-session ceiling
//	SessionTimeout:  10m     // Inactivity before expiry
//	GracePeriod:     5m      // Facilitator failover delay
//	GraceWarning:    1m      // Warning lead before the deadline
//	DeltaMaxGap:     5       // Largest gap answered with a delta
//
// # Usage Example
//
//	coord := coordinator.New(coordinator.Options{Logger: logger})
//	defer coord.Close()
//
//	view, ada, err := coord.CreateSession("Sprint 42", "Ada", "owl")
//	if err != nil {
//	    return err
//	}
//	bob, _, err := coord.Join(view.ID, "Bob", "")
//	if err != nil {
//	    return err
//	}
//
//	coord.StartRound(view.ID, ada.ID, "login page")
//	coord.SubmitVote(view.ID, bob.ID, poker.Card5)
//	stats, err := coord.RevealVotes(view.ID, ada.ID)
//
// # See Also
//
// Related packages:
//   - internal/poker: Session, round and card types
//   - internal/broadcast: Event fan-out and history
//   - cmd/pokerd: HTTP and websocket server
package coordinator

// Package poker defines the data model of a planning poker session: the
// session itself, its participants, voting rounds, cards and the statistics
// computed when a round is revealed.
//
// # Overview
//
// Everything in this package is plain data plus pure helpers. Nothing here
// locks: a *Session is owned by exactly one entry of the coordinator's
// session table and is only touched while that entry's mutex is held.
// Participants and rounds are owned outright by their session and are never
// referenced from outside it except by id.
//
// # Lifecycle
//
//	waiting ──StartRound──▶ voting ──Reveal──▶ revealed ──Reset/Start──▶ ...
//	   │                      │                   │
//	   └──────── facilitator disconnect ──────────┘
//	                          ▼
//	                       paused ──reconnect / failover──▶ prior status
//
// Any status may move to expired, after which the session is removed from
// the table.
//
// # Cards
//
// Votes are drawn from a fixed deck: 1, 2, 3, 5, 8, 13, 21 and a non-numeric
// "pause" card. Pause votes are counted in the distribution but excluded from
// the mean, and any pause vote breaks consensus.
//
// # Views
//
// Session.View produces the serialisable form handed to clients. Vote values
// of an unrevealed round are hidden; the viewer only sees who has voted, plus
// their own card. SessionView.Checksum digests the viewer-independent part of
// a view so reconnecting clients can detect divergence at equal versions.
//
// # Errors
//
// Expected failures are sentinel errors (ErrSessionFull, ErrForbidden, ...)
// compared with errors.Is. Code maps each of them to the stable tag used on
// the wire.
package poker

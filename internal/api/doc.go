// Package api holds the wire types of pokerd's HTTP surface together with
// the helpers both sides of it share.
//
// # Overview
//
// Server side, handlers decode requests with ParseJSONBody, answer with
// JSONResponse, and report failures with ErrorResponse. ErrorResponse turns
// the sentinel errors of package poker into a stable envelope:
//
//	HTTP/1.1 409 Conflict
//	{"error": "session_full", "message": "session is full"}
//
// StatusFor picks the status code:
//
//	capacity_exceeded                                 503
//	session_not_found, participant_not_found          404
//	session_expired                                   410
//	forbidden                                         403
//	session_full, no_active_round, already_voting,
//	already_revealed, session_paused                  409
//	invalid_vote_value, invalid_transfer_target,
//	invalid_name, bad_request                         400
//
// Client side, PostJSON and GetJSON talk to a running server and surface
// error envelopes as *RemoteError.
//
// # Identity
//
// There is no authentication. Calls acting for a participant name them in
// the X-Participant-ID header (ParticipantHeader); facilitator-only routes
// compare it against the session's facilitator.
package api

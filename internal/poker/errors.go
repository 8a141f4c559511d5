package poker

import "errors"

// Expected conditions. None of these leave a session partially modified:
// every operation validates before it writes.
var (
	ErrCapacityExceeded      = errors.New("session capacity exceeded")
	ErrSessionNotFound       = errors.New("session not found")
	ErrSessionExpired        = errors.New("session expired")
	ErrSessionFull           = errors.New("session is full")
	ErrForbidden             = errors.New("action requires the facilitator role")
	ErrNoActiveRound         = errors.New("no active voting round")
	ErrAlreadyVoting         = errors.New("a voting round is already open")
	ErrAlreadyRevealed       = errors.New("votes have already been revealed")
	ErrInvalidVoteValue      = errors.New("invalid vote value")
	ErrInvalidTransferTarget = errors.New("invalid transfer target")
	ErrParticipantNotFound   = errors.New("participant not found")
	ErrSessionPaused         = errors.New("session is paused")
	ErrInvalidName           = errors.New("invalid name")
)

// Error codes carried in the wire error envelope.
const (
	CodeCapacityExceeded      = "capacity_exceeded"
	CodeSessionNotFound       = "session_not_found"
	CodeSessionExpired        = "session_expired"
	CodeSessionFull           = "session_full"
	CodeForbidden             = "forbidden"
	CodeNoActiveRound         = "no_active_round"
	CodeAlreadyVoting         = "already_voting"
	CodeAlreadyRevealed       = "already_revealed"
	CodeInvalidVoteValue      = "invalid_vote_value"
	CodeInvalidTransferTarget = "invalid_transfer_target"
	CodeParticipantNotFound   = "participant_not_found"
	CodeSessionPaused         = "session_paused"
	CodeInvalidName           = "invalid_name"
	CodeInternal              = "internal"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrCapacityExceeded, CodeCapacityExceeded},
	{ErrSessionNotFound, CodeSessionNotFound},
	{ErrSessionExpired, CodeSessionExpired},
	{ErrSessionFull, CodeSessionFull},
	{ErrForbidden, CodeForbidden},
	{ErrNoActiveRound, CodeNoActiveRound},
	{ErrAlreadyVoting, CodeAlreadyVoting},
	{ErrAlreadyRevealed, CodeAlreadyRevealed},
	{ErrInvalidVoteValue, CodeInvalidVoteValue},
	{ErrInvalidTransferTarget, CodeInvalidTransferTarget},
	{ErrParticipantNotFound, CodeParticipantNotFound},
	{ErrSessionPaused, CodeSessionPaused},
	{ErrInvalidName, CodeInvalidName},
}

// Code returns the wire tag for err, or CodeInternal when err is not one of
// the package's sentinel errors. A nil error has no code.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

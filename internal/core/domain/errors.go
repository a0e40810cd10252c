package domain

import "errors"

// The ledger surfaces exactly these error kinds. Callers are expected to
// match with errors.Is; extra context is attached by wrapping.
var (
	ErrUnauthorized     = errors.New("caller is not the administrator")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrElectionNotFound = errors.New("election not found")
	ErrAlreadyVoted     = errors.New("voter has already cast a ballot in this election")
	ErrVotingClosed     = errors.New("election is not accepting votes")
)

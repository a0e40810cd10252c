package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ballot is a voter's one-time record for one election. Its id doubles as the
// confirmation token returned to the caller.
type Ballot struct {
	ID             uuid.UUID `json:"id"`
	ElectionID     int64     `json:"election_id"`
	VoterID        string    `json:"voter_id"`
	CandidateIndex int       `json:"candidate_index"`
	CreatedAt      time.Time `json:"created_at"`
}

// CandidateTally is the aggregate vote count for one candidate, positioned by
// its index in the election's candidate list.
type CandidateTally struct {
	Index     int    `json:"index"`
	Label     string `json:"label"`
	VoteCount int64  `json:"vote_count"`
}

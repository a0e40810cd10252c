package ports

import (
	"context"

	"github.com/vncsmyrnk/election-ledger/internal/core/domain"
)

// BallotBox is the per-election eligibility ledger and tally counters.
//
// RecordVote enforces candidate range and the one-vote-per-identity invariant
// itself; timing is the caller's responsibility. Marking the ballot,
// incrementing the candidate tally and incrementing the election total are
// one atomic step: either all three happen or none do.
type BallotBox interface {
	HasVoted(ctx context.Context, electionID int64, voterID string) (bool, error)
	GetBallot(ctx context.Context, electionID int64, voterID string) (*domain.Ballot, error)
	RecordVote(ctx context.Context, electionID int64, voterID string, candidateIndex int) (*domain.Ballot, error)
	GetVoteCount(ctx context.Context, electionID int64, candidateIndex int) (int64, error)
	GetTallies(ctx context.Context, electionID int64) ([]domain.CandidateTally, error)
}
